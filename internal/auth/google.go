package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrProviderExchange marks a failed token exchange or refresh with the
// identity provider, attributable to the credentials the caller sent.
var ErrProviderExchange = errors.New("incorrect Google credentials")

// ErrProviderUserinfo marks a failed userinfo fetch after a successful
// exchange; this one is the provider's fault, not the caller's.
var ErrProviderUserinfo = errors.New("failed to retrieve Google user info")

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

// Userinfo is the subset of the Google userinfo payload the service uses.
type Userinfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// RefreshedToken is returned by the provider refresh proxy.
type RefreshedToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   string `json:"expires_at"`
}

// GoogleClient talks to the Google OAuth and userinfo endpoints with an
// injected HTTP client and bounded timeouts.
type GoogleClient struct {
	oauth       *oauth2.Config
	client      *http.Client
	userinfoURL string
	timeout     time.Duration
	now         func() time.Time
}

// GoogleClientConfig configures a GoogleClient. Endpoint and UserinfoURL
// default to the real Google endpoints and exist for tests.
type GoogleClientConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Timeout      time.Duration
	Endpoint     oauth2.Endpoint
	UserinfoURL  string
}

// NewGoogleClient builds a client for the configured OAuth application.
func NewGoogleClient(client *http.Client, cfg GoogleClientConfig) *GoogleClient {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userinfoURL := cfg.UserinfoURL
	if userinfoURL == "" {
		userinfoURL = defaultUserinfoURL
	}
	return &GoogleClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     endpoint,
		},
		client:      client,
		userinfoURL: userinfoURL,
		timeout:     cfg.Timeout,
		now:         time.Now,
	}
}

// AuthURL returns the provider authorization URL the client redirects to,
// requesting offline access so a refresh token is issued.
func (g *GoogleClient) AuthURL() string {
	return g.oauth.AuthCodeURL("", oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for the provider access token.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	return tok.AccessToken, nil
}

// Userinfo fetches the profile behind a provider access token.
func (g *GoogleClient) Userinfo(ctx context.Context, accessToken string) (Userinfo, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return Userinfo{}, fmt.Errorf("%w: %v", ErrProviderUserinfo, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return Userinfo{}, fmt.Errorf("%w: %v", ErrProviderUserinfo, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Userinfo{}, fmt.Errorf("%w: status %d: %s", ErrProviderUserinfo, resp.StatusCode, body)
	}

	var info Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Userinfo{}, fmt.Errorf("%w: decode: %v", ErrProviderUserinfo, err)
	}
	return info, nil
}

// Refresh proxies the provider refresh grant for the frontend.
func (g *GoogleClient) Refresh(ctx context.Context, refreshToken string) (RefreshedToken, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	form := url.Values{
		"client_id":     {g.oauth.ClientID},
		"client_secret": {g.oauth.ClientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, g.oauth.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return RefreshedToken{}, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return RefreshedToken{}, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	if resp.StatusCode != http.StatusOK {
		return RefreshedToken{}, fmt.Errorf("%w: status %d", ErrProviderExchange, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return RefreshedToken{}, fmt.Errorf("%w: decode: %v", ErrProviderExchange, err)
	}
	return RefreshedToken{
		AccessToken: payload.AccessToken,
		ExpiresIn:   payload.ExpiresIn,
		ExpiresAt:   g.now().UTC().Add(time.Duration(payload.ExpiresIn) * time.Second).Format(time.RFC3339),
	}, nil
}
