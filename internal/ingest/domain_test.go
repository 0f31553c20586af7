package ingest

import "testing"

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain", "example.com", "example.com"},
		{"https scheme", "https://example.com", "example.com"},
		{"http scheme", "http://example.com", "example.com"},
		{"www prefix and path", "www.example.com/path", "example.com"},
		{"scheme www and path", "https://www.example.com/some/path?q=1", "example.com"},
		{"port preserved", "example.com:8080", "example.com:8080"},
		{"only www stripped once", "www.www.example.com", "www.example.com"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeDomain(tc.in); got != tc.want {
				t.Fatalf("NormalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
