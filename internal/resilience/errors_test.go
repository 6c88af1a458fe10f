package resilience

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRateLimit_ExplicitRateLimitError(t *testing.T) {
	err := NewRateLimitError(errors.New("slow down"), 429)
	if !IsRateLimit(err) {
		t.Error("expected RateLimitError to be classified as rate limit")
	}
}

func TestIsRateLimit_WrappedRateLimitError(t *testing.T) {
	inner := NewRateLimitError(errors.New("throttled"), 429)
	wrapped := fmt.Errorf("api call failed: %w", inner)
	if !IsRateLimit(wrapped) {
		t.Error("expected wrapped RateLimitError to be classified as rate limit")
	}
}

func TestIsRateLimit_NilError(t *testing.T) {
	if IsRateLimit(nil) {
		t.Error("nil error should not be a rate limit")
	}
}

func TestIsRateLimit_RegularError(t *testing.T) {
	err := errors.New("invalid input: missing field")
	if IsRateLimit(err) {
		t.Error("regular error should not be a rate limit")
	}
}

func TestIsRateLimit_MessagePatterns(t *testing.T) {
	patterns := []string{
		"Rate limit exceeded, retry later",
		"rate_limit_error from upstream",
		"429 Too Many Requests",
		"googleapi: Error 429: RESOURCE_EXHAUSTED",
		"quota exceeded for this project",
	}
	for _, p := range patterns {
		err := errors.New(p)
		if !IsRateLimit(err) {
			t.Errorf("expected %q to be classified as rate limit", p)
		}
	}
}

func TestIsRateLimit_NonRateLimitPatterns(t *testing.T) {
	patterns := []string{
		"connection reset by peer",
		"500 internal server error",
		"context deadline exceeded",
		"invalid JSON in response body",
	}
	for _, p := range patterns {
		err := errors.New(p)
		if IsRateLimit(err) {
			t.Errorf("expected %q to NOT be classified as rate limit", p)
		}
	}
}

func TestIsRateLimitStatus(t *testing.T) {
	if !IsRateLimitStatus(429) {
		t.Error("expected HTTP 429 to be a rate-limit status")
	}
	for _, code := range []int{200, 400, 401, 403, 404, 408, 500, 502, 503, 504} {
		if IsRateLimitStatus(code) {
			t.Errorf("expected HTTP %d to NOT be a rate-limit status", code)
		}
	}
}

func TestRateLimitError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	rle := NewRateLimitError(inner, 429)

	if !errors.Is(rle, inner) {
		t.Error("RateLimitError.Unwrap should return the inner error")
	}

	if rle.StatusCode != 429 {
		t.Errorf("expected StatusCode 429, got %d", rle.StatusCode)
	}
}

func TestRateLimitError_ErrorMessage(t *testing.T) {
	inner := errors.New("something went wrong")
	rle := NewRateLimitError(inner, 429)

	if rle.Error() != "something went wrong" {
		t.Errorf("expected error message %q, got %q", inner.Error(), rle.Error())
	}
}
