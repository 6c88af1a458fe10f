// Package mocks provides test doubles for the textgen client.
package mocks

import (
	"context"

	textgen "github.com/intentlab/fanout-cli/pkg/textgen"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, req
func (_m *MockClient) Generate(ctx context.Context, req textgen.Request) (*textgen.Response, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Generate")
	}

	var r0 *textgen.Response
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, textgen.Request) (*textgen.Response, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, textgen.Request) *textgen.Response); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*textgen.Response)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, textgen.Request) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
