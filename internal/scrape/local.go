package scrape

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/intentlab/fanout-cli/internal/model"
)

const (
	localUserAgent = "Mozilla/5.0 (compatible; FanoutBot/1.0)"
	maxBodyBytes   = 1 << 20 // 1 MiB of HTML is plenty for article extraction
)

// LocalScraper fetches HTML via net/http and extracts the readable article
// as markdown. Free, no API credits. Refuses blocked or unreadable pages
// so the chain can record the attempt as failed.
type LocalScraper struct {
	client    *http.Client
	converter *md.Converter
}

// NewLocalScraper creates a LocalScraper with sensible defaults.
func NewLocalScraper() *LocalScraper {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &LocalScraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		converter: converter,
	}
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL, detects blocks, and extracts the main article as
// markdown.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	pageURL, err := url.Parse(targetURL)
	if err != nil {
		return nil, eris.Wrapf(err, "local_http: parse url %s", targetURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", localUserAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blockType := DetectBlock(resp, body); blockType != BlockNone {
		return nil, eris.Errorf("local_http: blocked (%s)", blockType)
	}

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}

	html := decodeCharset(resp.Header.Get("Content-Type"), body)
	if len(html) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: extract article")
	}

	content, err := l.converter.ConvertString(article.Content)
	if err != nil || strings.TrimSpace(content) == "" {
		// Markdown conversion is best-effort; plain text still profiles fine.
		content = article.TextContent
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, eris.New("local_http: no readable content")
	}

	return &Result{
		Page: model.ScrapedPage{
			URL:     targetURL,
			Content: content,
		},
		Source: "local_http",
	}, nil
}

// decodeCharset converts a response body to UTF-8 based on the charset
// parameter of the Content-Type header. Returns the body unchanged when
// the charset is missing, already UTF-8, or unknown.
func decodeCharset(contentType string, body []byte) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" {
		return string(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
