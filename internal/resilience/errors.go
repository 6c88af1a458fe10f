package resilience

import (
	"errors"
	"strings"
)

// RateLimitError wraps an error caused by provider rate limiting (HTTP 429 or
// the provider's equivalent). It is the only error class the retry policy
// backs off on; everything else propagates to the per-item isolation boundary.
type RateLimitError struct {
	Err        error
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Err.Error()
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps an error as rate-limited with an optional HTTP
// status code.
func NewRateLimitError(err error, statusCode int) *RateLimitError {
	return &RateLimitError{Err: err, StatusCode: statusCode}
}

// rateLimitPatterns are message fragments providers use to signal rate
// limiting. Gemini reports RESOURCE_EXHAUSTED, Anthropic and Firecrawl use
// 429 / "rate limit" phrasing.
var rateLimitPatterns = []string{
	"rate limit",
	"rate_limit",
	"too many requests",
	"resource exhausted",
	"resource_exhausted",
	"quota exceeded",
	"429",
}

// IsRateLimit returns true if the error (or any error in its chain) is a
// RateLimitError, or if its message matches a known rate-limit signal.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsRateLimitStatus returns true if the HTTP status code signals rate
// limiting.
func IsRateLimitStatus(statusCode int) bool {
	return statusCode == 429
}
