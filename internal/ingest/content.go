package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// maxContentBytes caps how much page text is read into memory before it
// is embedded in the extraction prompt.
const maxContentBytes = 2 << 20

// ContentFetcher retrieves the rendered text content of a domain. When a
// reader-proxy URL is configured (e.g. https://r.jina.ai) the proxy does
// the rendering; otherwise the page is fetched directly and the main
// content is extracted locally with readability.
type ContentFetcher struct {
	client    *http.Client
	readerURL string
	timeout   time.Duration
}

// NewContentFetcher builds a ContentFetcher. An empty readerURL selects
// the local readability fallback.
func NewContentFetcher(client *http.Client, readerURL string, timeout time.Duration) *ContentFetcher {
	return &ContentFetcher{client: client, readerURL: readerURL, timeout: timeout}
}

// Fetch returns the text content of the domain's landing page. Any
// failure, including a non-200 from the proxy, maps to ErrContent.
func (f *ContentFetcher) Fetch(ctx context.Context, domain string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.readerURL != "" {
		return f.fetchViaReader(ctx, domain)
	}
	return f.fetchDirect(ctx, domain)
}

func (f *ContentFetcher) fetchViaReader(ctx context.Context, domain string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.readerURL+"/"+domain, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContent, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContent, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: reader status %d", ErrContent, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrContent, err)
	}
	return string(body), nil
}

func (f *ContentFetcher) fetchDirect(ctx context.Context, domain string) (string, error) {
	pageURL := "https://" + domain
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContent, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContent, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrContent, resp.StatusCode)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContent, err)
	}
	article, err := readability.FromReader(io.LimitReader(resp.Body, maxContentBytes), base)
	if err != nil {
		return "", fmt.Errorf("%w: extract readable content: %v", ErrContent, err)
	}
	return article.TextContent, nil
}
