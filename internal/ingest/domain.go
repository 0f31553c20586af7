package ingest

import (
	"net/url"
	"strings"
)

// NormalizeDomain derives the canonical domain from an arbitrary
// user-submitted link: a missing scheme defaults to http, only the
// network location survives parsing, and a leading "www." is stripped.
// The host is not validated; a malformed input yields a string the
// reachability probe will fail.
func NormalizeDomain(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
