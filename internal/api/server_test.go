package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/appsquad/tooldir/internal/auth"
	"github.com/appsquad/tooldir/internal/ingest"
	"github.com/appsquad/tooldir/internal/store"
	"github.com/appsquad/tooldir/internal/store/storetest"
	"github.com/appsquad/tooldir/internal/tool"
)

const testAppURL = "https://app.test"

// stubRunner synthesizes pipeline output without any network calls.
type stubRunner struct {
	err error
}

func (s stubRunner) Run(_ context.Context, domain string) (ingest.ToolInfo, error) {
	if s.err != nil {
		return ingest.ToolInfo{}, s.err
	}
	return ingest.ToolInfo{
		Domain:   domain,
		Name:     "Tool " + domain,
		Category: "testing",
		Logo:     "https://icons.test/" + domain,
	}, nil
}

type sinkMailer struct {
	confirmLinks []string
	feedback     []string
	fail         bool
}

func (m *sinkMailer) SendConfirmation(_ context.Context, _, link string) error {
	if m.fail {
		return fmt.Errorf("provider down")
	}
	m.confirmLinks = append(m.confirmLinks, link)
	return nil
}

func (m *sinkMailer) SendPasswordReset(context.Context, string, string) error { return nil }

func (m *sinkMailer) SendFeedback(_ context.Context, userEmail string, rating int, feedback string) error {
	if m.fail {
		return fmt.Errorf("provider down")
	}
	m.feedback = append(m.feedback, fmt.Sprintf("%s %d %s", userEmail, rating, feedback))
	return nil
}

// testEnv bundles a fully wired Server over in-memory collaborators.
type testEnv struct {
	server *Server
	store  *storetest.Store
	auth   *auth.Service
	mailer *sinkMailer
}

func newTestEnv(t *testing.T, runner ingest.Runner, providerURL string) *testEnv {
	t.Helper()

	st := storetest.New()
	google := auth.NewGoogleClient(http.DefaultClient, auth.GoogleClientConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://api.test/auth/callback/google",
		Timeout:      time.Second,
		Endpoint: oauth2.Endpoint{
			AuthURL:  providerURL + "/auth",
			TokenURL: providerURL + "/token",
		},
		UserinfoURL: providerURL + "/userinfo",
	})
	tokens := auth.NewTokenIssuer("test-secret", 30*time.Minute, 7*24*time.Hour)
	mailer := &sinkMailer{}
	authSvc := auth.NewService(st, google, tokens, mailer, testAppURL, zap.NewNop())
	toolSvc := tool.NewService(st, runner, 10, zap.NewNop())

	return &testEnv{
		server: NewServer(authSvc, toolSvc, mailer, zap.NewNop()),
		store:  st,
		auth:   authSvc,
		mailer: mailer,
	}
}

// login seeds a user and returns the session cookie requests should carry.
func (e *testEnv) login(t *testing.T, u store.User) (store.User, *http.Cookie) {
	t.Helper()
	seeded := e.store.SeedUser(u)
	token, err := e.auth.Tokens().IssueAccessToken(seeded.Email)
	require.NoError(t, err)
	return seeded, &http.Cookie{Name: "access_token", Value: "Bearer " + token}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload["detail"]
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")

	req := httptest.NewRequest(http.MethodPost, "/tool/", strings.NewReader(`{"link":"example.com"}`))
	rec := env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Not authenticated", decodeDetail(t, rec))

	req = httptest.NewRequest(http.MethodPost, "/tool/", strings.NewReader(`{"link":"example.com"}`))
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "Bearer garbage"})
	rec = env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token", decodeDetail(t, rec))
}

func TestAddToolFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	_, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})

	req := httptest.NewRequest(http.MethodPost, "/tool/", strings.NewReader(`{"link":"https://www.example.com/pricing"}`))
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var created toolView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "example.com", created.Link)
	require.Equal(t, "Tool example.com", created.Name)
	require.NotZero(t, created.ID)

	// Same domain again, even spelled differently, is rejected.
	req = httptest.NewRequest(http.MethodPost, "/tool/", strings.NewReader(`{"link":"example.com"}`))
	req.AddCookie(cookie)
	rec = env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Tool already added", decodeDetail(t, rec))
}

func TestAddToolPipelineErrorsMapToStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"unreachable", ingest.ErrUnreachable, http.StatusBadRequest, "Couldn't reach domain"},
		{"content", ingest.ErrContent, http.StatusInternalServerError, "Couldn't retrieve website content"},
		{"completion", ingest.ErrCompletion, http.StatusInternalServerError, "Couldn't retrieve website content"},
		{"favicon", ingest.ErrFavicon, http.StatusInternalServerError, "Couldn't retrieve favicon"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, stubRunner{err: tc.err}, "http://provider.invalid")
			_, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})

			req := httptest.NewRequest(http.MethodPost, "/tool/", strings.NewReader(`{"link":"example.com"}`))
			req.AddCookie(cookie)
			rec := env.do(req)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.detail, decodeDetail(t, rec))
		})
	}
}

func TestToolLimitReturns401(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	user, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})
	for i := 0; i < 10; i++ {
		created, err := env.store.CreateTool(context.Background(), store.Tool{Link: fmt.Sprintf("t%d.example.com", i)})
		require.NoError(t, err)
		require.NoError(t, env.store.AddUserTool(context.Background(), user.ID, created.ID))
	}

	req := httptest.NewRequest(http.MethodPost, "/tool/", strings.NewReader(`{"link":"one-more.example.com"}`))
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "max tools limit reached", decodeDetail(t, rec))
}

func TestRemoveToolIsLenient(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	_, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})

	req := httptest.NewRequest(http.MethodDelete, "/tool/12345", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGoogleCallbackSetsCookieAndRedirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	provider := httptest.NewServer(mux)
	defer provider.Close()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"g-1","email":"jane@example.com","name":"Jane Q Doe"}`)
	})

	env := newTestEnv(t, stubRunner{}, provider.URL)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/callback/google?code=good-code", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, testAppURL+"/auth/google/callback?token="), location)
	require.Contains(t, location, "&url=Jane-Q-Doe")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	require.Equal(t, "access_token", c.Name)
	require.True(t, strings.HasPrefix(c.Value, "Bearer "), "cookie carries the bearer token")
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, int((30 * time.Minute).Seconds()), c.MaxAge)

	// Bad codes surface as a caller error, not a server one.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/auth/callback/google?code=stolen", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Incorrect Google credentials", decodeDetail(t, rec))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/auth/callback/google", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	rec := env.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "access_token", cookies[0].Name)
	require.Negative(t, cookies[0].MaxAge)
}

func TestProfileVisibility(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	_, janeCookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane", Username: "Jane"})
	_, bobCookie := env.login(t, store.User{Email: "bob@example.com", URL: "bob", Username: "Bob"})

	// Anonymous and non-owner viewers never see the email.
	for _, cookie := range []*http.Cookie{nil, bobCookie} {
		req := httptest.NewRequest(http.MethodGet, "/auth/users/jane", nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := env.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		require.NotContains(t, payload, "email")
		require.Equal(t, "jane", payload["url"])
	}

	// The owner sees the full variant.
	req := httptest.NewRequest(http.MethodGet, "/auth/users/jane", nil)
	req.AddCookie(janeCookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "jane@example.com", payload["email"])

	// /auth/users/me is always the full variant.
	req = httptest.NewRequest(http.MethodGet, "/auth/users/me", nil)
	req.AddCookie(janeCookie)
	rec = env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "jane@example.com", payload["email"])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/auth/users/nobody", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found", decodeDetail(t, rec))
}

func TestConfirmationFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	_, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})

	req := httptest.NewRequest(http.MethodPost, "/auth/confirm/new", nil)
	req.Host = "api.test"
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.mailer.confirmLinks, 1)

	link := env.mailer.confirmLinks[0]
	require.True(t, strings.HasPrefix(link, "https://api.test/auth/confirm/"), link)
	token := link[strings.LastIndex(link, "/")+1:]

	req = httptest.NewRequest(http.MethodGet, "/auth/confirm/"+token, nil)
	req.AddCookie(cookie)
	rec = env.do(req)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t, testAppURL, rec.Header().Get("Location"))

	user, err := env.store.UserByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.True(t, user.Confirmed)
}

func TestConfirmationBadToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	_, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})

	req := httptest.NewRequest(http.MethodGet, "/auth/confirm/garbage", nil)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "The confirmation link is invalid or has expired.", decodeDetail(t, rec))
}

func multipartAudio(t *testing.T, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "review.mp3")
	require.NoError(t, err)
	_, err = part.Write(audio)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestReviewUploadAndFetch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	user, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})
	created, err := env.store.CreateTool(context.Background(), store.Tool{Link: "example.com"})
	require.NoError(t, err)

	body, contentType := multipartAudio(t, []byte("mp3-bytes"))
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/tool/%d/review", created.ID), body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view reviewView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, created.ID, view.ToolID)
	require.Equal(t, user.ID, view.UserID)

	// Metadata fetch is public and carries no audio.
	rec = env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tool/%d/review", created.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// data=true streams the raw audio.
	rec = env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/tool/%d/review?data=true&user_id=%d", created.ID, user.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "audio/mp3", rec.Header().Get("Content-Type"))
	raw, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	require.Equal(t, []byte("mp3-bytes"), raw)
}

func TestReviewNotFoundAndBadUpload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	_, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/tool/999/review", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Review not found", decodeDetail(t, rec))

	// Uploading against a tool that doesn't exist is a 404.
	body, contentType := multipartAudio(t, []byte("mp3-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/tool/999/review", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec = env.do(req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "tool not found", decodeDetail(t, rec))

	// Missing the audio part is a caller error.
	created, err := env.store.CreateTool(context.Background(), store.Tool{Link: "example.com"})
	require.NoError(t, err)
	var empty bytes.Buffer
	mw := multipart.NewWriter(&empty)
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/tool/%d/review", created.ID), &empty)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)
	rec = env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	_, cookie := env.login(t, store.User{Email: "jane@example.com", URL: "jane"})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/feedback", strings.NewReader(body))
		req.AddCookie(cookie)
		return env.do(req)
	}

	rec := send(`{"rating":5,"feedback":"love it"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.mailer.feedback, 1)
	require.Equal(t, "jane@example.com 5 love it", env.mailer.feedback[0])

	require.Equal(t, http.StatusBadRequest, send(`{"rating":0,"feedback":"x"}`).Code)
	require.Equal(t, http.StatusBadRequest, send(`{"rating":6,"feedback":"x"}`).Code)
	require.Equal(t, http.StatusBadRequest, send(`{"rating":3,"feedback":""}`).Code)

	env.mailer.fail = true
	require.Equal(t, http.StatusInternalServerError, send(`{"rating":3,"feedback":"meh"}`).Code)
}

func TestLoginURLEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, stubRunner{}, "http://provider.invalid")
	rec := env.do(httptest.NewRequest(http.MethodGet, "/auth/login/google", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Contains(t, payload["url"], "http://provider.invalid/auth")
	require.Contains(t, payload["url"], "client_id=client-id")
}
