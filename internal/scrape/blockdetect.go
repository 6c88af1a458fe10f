package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

var captchaMarkers = []string{"captcha", "recaptcha", "hcaptcha"}

var cloudflareMarkers = []string{"checking your browser", "cf-browser-verification"}

// DetectBlock checks an HTTP response for signs of anti-bot protection.
// A blocked page should be retried through Firecrawl instead of being
// profiled as thin content.
func DetectBlock(resp *http.Response, body []byte) BlockType {
	if resp == nil {
		return BlockNone
	}

	// Cloudflare: 403/503 with cf-* headers.
	if resp.StatusCode == 403 || resp.StatusCode == 503 {
		if resp.Header.Get("cf-ray") != "" ||
			resp.Header.Get("cf-cache-status") != "" ||
			resp.Header.Get("server") == "cloudflare" {
			return BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))

	for _, marker := range cloudflareMarkers {
		if strings.Contains(lower, marker) {
			return BlockCloudflare
		}
	}
	if strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge") {
		return BlockCloudflare
	}

	for _, marker := range captchaMarkers {
		if strings.Contains(lower, marker) {
			return BlockCaptcha
		}
	}

	// JS-only shell: very small body with noscript or meta refresh.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
			return BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return BlockJSShell
		}
	}

	return BlockNone
}
