package ingest

import "errors"

// Stage failures, distinguished so the HTTP layer can attribute them:
// an unreachable domain is the caller's fault, the rest are upstream
// service failures.
var (
	// ErrUnreachable marks a domain that did not answer 200 within the
	// probe deadline.
	ErrUnreachable = errors.New("couldn't reach domain")
	// ErrContent marks a failed content-extraction fetch.
	ErrContent = errors.New("couldn't retrieve website content")
	// ErrCompletion marks a transport-level language-model failure.
	ErrCompletion = errors.New("completion request failed")
	// ErrFavicon marks a failed favicon fetch.
	ErrFavicon = errors.New("couldn't retrieve favicon")
)
