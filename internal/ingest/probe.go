package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Prober confirms a domain resolves and answers successfully over HTTPS.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// NewProber builds a Prober around the shared HTTP client.
func NewProber(client *http.Client, timeout time.Duration) *Prober {
	return &Prober{client: client, timeout: timeout}
}

// Probe issues a single GET to https://<domain>. Anything other than a
// 200 within the deadline, including transport errors, maps to
// ErrUnreachable; there is no retry.
func (p *Prober) Probe(ctx context.Context, domain string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+domain, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnreachable, domain)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreachable, domain, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrUnreachable, domain, resp.StatusCode)
	}
	return nil
}
