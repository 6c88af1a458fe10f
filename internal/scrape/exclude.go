package scrape

import (
	"net/url"
	"path"
	"strings"
)

// ExcludeMatcher filters URLs against glob-style patterns. Patterns
// starting with "/" match the URL path ("/*.pdf"); anything else matches
// the host ("youtube.com", "*.reddit.com"). With no patterns, nothing is
// excluded and every search result gets a scrape attempt.
type ExcludeMatcher struct {
	hosts []string
	paths []string
}

// NewExcludeMatcher creates an ExcludeMatcher from glob patterns.
func NewExcludeMatcher(patterns []string) *ExcludeMatcher {
	m := &ExcludeMatcher{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "/") {
			m.paths = append(m.paths, p)
		} else {
			m.hosts = append(m.hosts, p)
		}
	}
	return m
}

// Patterns returns the configured patterns, host patterns first.
func (m *ExcludeMatcher) Patterns() []string {
	out := make([]string, 0, len(m.hosts)+len(m.paths))
	out = append(out, m.hosts...)
	out = append(out, m.paths...)
	return out
}

// IsExcluded checks whether a URL matches any exclude pattern.
// Unparseable URLs are excluded since no scraper could fetch them anyway.
func (m *ExcludeMatcher) IsExcluded(rawURL string) bool {
	if m == nil || (len(m.hosts) == 0 && len(m.paths) == 0) {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	host := strings.ToLower(u.Hostname())
	for _, pattern := range m.hosts {
		if matchHost(pattern, host) {
			return true
		}
	}

	urlPath := strings.ToLower(u.Path)
	for _, pattern := range m.paths {
		if matchSegmented(pattern, urlPath) {
			return true
		}
	}
	return false
}

// matchHost matches a host pattern, treating a bare domain as covering
// its subdomains (so "youtube.com" also matches "www.youtube.com").
func matchHost(pattern, host string) bool {
	if ok, _ := path.Match(pattern, host); ok {
		return true
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return host == pattern || strings.HasSuffix(host, "."+pattern)
	}
	return false
}

// matchSegmented performs glob matching where a pattern like "/blog/*"
// matches both "/blog/post" and "/blog/deep/nested/path".
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
