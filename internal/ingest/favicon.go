package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FaviconFetcher resolves a site icon URL through a third-party favicon
// service. Only the resolved URL is persisted; the binary is fetched to
// confirm the icon exists and then discarded.
type FaviconFetcher struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// NewFaviconFetcher builds a fetcher for the given favicon service.
func NewFaviconFetcher(client *http.Client, baseURL string, timeout time.Duration) *FaviconFetcher {
	return &FaviconFetcher{client: client, baseURL: baseURL, timeout: timeout}
}

// Fetch requests a 256px icon for the domain and returns the resolved
// (post-redirect) URL. The service occasionally redirects to a size=16
// variant; the persisted URL keeps the requested size. Any failure maps
// to ErrFavicon and aborts the ingestion.
func (f *FaviconFetcher) Fetch(ctx context.Context, domain string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("domain", domain)
	q.Set("size", "256")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFavicon, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFavicon, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrFavicon, resp.StatusCode)
	}
	// Drain so the connection can be reused; the icon bytes themselves
	// are not persisted.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return "", fmt.Errorf("%w: read icon: %v", ErrFavicon, err)
	}

	resolved := resp.Request.URL.String()
	return strings.ReplaceAll(resolved, "size=16", "size=256"), nil
}
