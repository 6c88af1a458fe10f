// Package textgen provides a provider-agnostic client for LLM text
// generation. Both the Gemini and Anthropic backends are exposed through
// the same Client interface so the pipeline can be wired against either
// one (or a mock) without caring which SDK sits underneath.
package textgen

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
)

// Supported provider names for New.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// defaultMaxTokens bounds a completion when the caller does not set one.
const defaultMaxTokens = 8192

// Client generates text from a single prompt.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request describes one generation call.
type Request struct {
	// Model is the provider-specific model ID.
	Model string
	// Prompt is the full user prompt.
	Prompt string
	// JSONOutput asks the backend for a JSON response where the provider
	// supports it natively. Backends without a JSON mode rely on the
	// prompt itself demanding raw JSON.
	JSONOutput bool
	// MaxTokens caps the completion length. Zero means defaultMaxTokens.
	MaxTokens int64
}

// Response is the generated text plus token accounting.
type Response struct {
	Text  string
	Usage Usage
}

// Usage reports token consumption for a single call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Option configures a backend client.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL overrides the provider API base URL.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds a Client for the named provider. An empty provider defaults
// to Gemini.
func New(ctx context.Context, provider, apiKey string, opts ...Option) (Client, error) {
	switch provider {
	case "", ProviderGemini:
		return NewGemini(ctx, apiKey, opts...)
	case ProviderAnthropic:
		return NewAnthropic(apiKey, opts...), nil
	default:
		return nil, eris.Errorf("textgen: unknown provider %q", provider)
	}
}
