package textgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		wantType any
		wantErr  string
	}{
		{name: "gemini", provider: "gemini", wantType: &geminiClient{}},
		{name: "empty defaults to gemini", provider: "", wantType: &geminiClient{}},
		{name: "anthropic", provider: "anthropic", wantType: &anthropicClient{}},
		{name: "unknown provider", provider: "openai", wantErr: `unknown provider "openai"`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(context.Background(), tt.provider, "test-key")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, c)
		})
	}
}
