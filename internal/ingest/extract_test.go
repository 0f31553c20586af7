package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newReaderServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
}

func TestExtractParsesBothTags(t *testing.T) {
	t.Parallel()

	srv := newReaderServer(t, http.StatusOK, "React is a library for web interfaces")
	defer srv.Close()

	completer := &fakeCompleter{response: "<name>React</name>\n<category>front-end framework</category>"}
	e := NewExtractor(NewContentFetcher(srv.Client(), srv.URL, time.Second), completer)

	meta, err := e.Extract(context.Background(), "react.dev")
	require.NoError(t, err)
	require.Equal(t, "React", meta.Name)
	require.Equal(t, "front-end framework", meta.Category)

	require.Len(t, completer.prompts, 1)
	require.Contains(t, completer.prompts[0], "React is a library for web interfaces")
}

func TestExtractMissingTagDegradesToUnknown(t *testing.T) {
	t.Parallel()

	srv := newReaderServer(t, http.StatusOK, "some content")
	defer srv.Close()

	completer := &fakeCompleter{response: "<name>Foo</name>"}
	e := NewExtractor(NewContentFetcher(srv.Client(), srv.URL, time.Second), completer)

	meta, err := e.Extract(context.Background(), "foo.io")
	require.NoError(t, err)
	require.Equal(t, "Foo", meta.Name)
	require.Equal(t, "Unknown", meta.Category)
}

func TestExtractTagSpansLinesAndIsNonGreedy(t *testing.T) {
	t.Parallel()

	srv := newReaderServer(t, http.StatusOK, "some content")
	defer srv.Close()

	completer := &fakeCompleter{
		response: "<name>\nPostgres\n</name> trailing <name>Other</name>\n<category>database\nsystem</category>",
	}
	e := NewExtractor(NewContentFetcher(srv.Client(), srv.URL, time.Second), completer)

	meta, err := e.Extract(context.Background(), "postgresql.org")
	require.NoError(t, err)
	require.Equal(t, "Postgres", meta.Name)
	require.Equal(t, "database\nsystem", meta.Category)
}

func TestExtractContentFetchFailureAborts(t *testing.T) {
	t.Parallel()

	srv := newReaderServer(t, http.StatusBadGateway, "upstream broke")
	defer srv.Close()

	completer := &fakeCompleter{response: "<name>Never</name>"}
	e := NewExtractor(NewContentFetcher(srv.Client(), srv.URL, time.Second), completer)

	_, err := e.Extract(context.Background(), "example.com")
	require.ErrorIs(t, err, ErrContent)
	require.Empty(t, completer.prompts, "completer must not be called when the fetch fails")
}

func TestExtractCompleterFailureIsTransportError(t *testing.T) {
	t.Parallel()

	srv := newReaderServer(t, http.StatusOK, "some content")
	defer srv.Close()

	completer := &fakeCompleter{err: errors.New("boom")}
	e := NewExtractor(NewContentFetcher(srv.Client(), srv.URL, time.Second), completer)

	_, err := e.Extract(context.Background(), "example.com")
	require.ErrorIs(t, err, ErrCompletion)
}

func TestOpenAICompleterRoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"<name>Vite</name>"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAICompleter(srv.Client(), srv.URL, "test-key", "gpt-4o-mini", time.Second)
	out, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, "<name>Vite</name>", out)
}

func TestOpenAICompleterNon200Fails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAICompleter(srv.Client(), srv.URL, "test-key", "gpt-4o-mini", time.Second)
	_, err := c.Complete(context.Background(), "prompt")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "429"))
}
