// Package auth implements the session subsystem: Google OAuth login,
// signed access tokens carried in a cookie, and the salted time-boxed
// email-confirmation flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/appsquad/tooldir/internal/email"
	"github.com/appsquad/tooldir/internal/store"
)

// Service drives the authentication state machine per session.
type Service struct {
	users  store.UserRepository
	google *GoogleClient
	tokens *TokenIssuer
	mailer email.Mailer
	appURL string
	logger *zap.Logger
}

// NewService wires the auth collaborators together. appURL is the
// frontend origin the OAuth callback redirects back to.
func NewService(
	users store.UserRepository,
	google *GoogleClient,
	tokens *TokenIssuer,
	mailer email.Mailer,
	appURL string,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:  users,
		google: google,
		tokens: tokens,
		mailer: mailer,
		appURL: appURL,
		logger: logger,
	}
}

// Tokens exposes the token issuer, which the HTTP layer needs for cookie
// lifetimes.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// LoginURL returns the provider authorization URL for the client.
func (s *Service) LoginURL() string {
	return s.google.AuthURL()
}

// AppURL returns the frontend origin used for post-auth redirects.
func (s *Service) AppURL() string {
	return s.appURL
}

// HandleCallback completes the OAuth handshake: exchange the code, fetch
// the Google profile, create the user on first login (matched by email),
// and issue the session token.
func (s *Service) HandleCallback(ctx context.Context, code string) (store.User, string, error) {
	accessToken, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", zap.Error(err))
		return store.User{}, "", err
	}

	info, err := s.google.Userinfo(ctx, accessToken)
	if err != nil {
		s.logger.Error("google userinfo fetch failed", zap.Error(err))
		return store.User{}, "", err
	}

	user, err := s.users.UserByEmail(ctx, info.Email)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.users.CreateUser(ctx, store.User{
			URL:      strings.Join(strings.Fields(info.Name), "-"),
			Username: info.Name,
			Email:    info.Email,
			Picture:  info.Picture,
		})
		if err != nil {
			return store.User{}, "", fmt.Errorf("create user: %w", err)
		}
		s.logger.Info("user created", zap.Int64("user_id", user.ID))
	} else if err != nil {
		return store.User{}, "", fmt.Errorf("lookup user: %w", err)
	}

	jwtToken, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return store.User{}, "", fmt.Errorf("issue access token: %w", err)
	}
	return user, jwtToken, nil
}

// RefreshGoogleToken proxies the provider refresh grant.
func (s *Service) RefreshGoogleToken(ctx context.Context, refreshToken string) (RefreshedToken, error) {
	return s.google.Refresh(ctx, refreshToken)
}

// CurrentUser resolves the session cookie value ("Bearer <jwt>") into the
// authenticated user. Every failure collapses to ErrInvalidToken.
func (s *Service) CurrentUser(ctx context.Context, cookieValue string) (store.User, error) {
	parts := strings.Fields(cookieValue)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return store.User{}, ErrInvalidToken
	}
	emailAddr, err := s.tokens.VerifyAccessToken(parts[1])
	if err != nil {
		return store.User{}, ErrInvalidToken
	}
	user, err := s.users.UserByEmail(ctx, emailAddr)
	if err != nil {
		s.logger.Info("no user found for session token email")
		return store.User{}, ErrInvalidToken
	}
	return user, nil
}

// SendConfirmation issues a fresh confirmation token and emails the
// verification link. host is the inbound request host the link points at.
func (s *Service) SendConfirmation(ctx context.Context, user store.User, host string) error {
	token, err := s.tokens.IssueConfirmToken(user.Email)
	if err != nil {
		return fmt.Errorf("issue confirm token: %w", err)
	}
	link := fmt.Sprintf("https://%s/auth/confirm/%s", host, token)
	if err := s.mailer.SendConfirmation(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

// SendPasswordReset issues a one-hour reset token and emails the reset
// link pointing at the frontend.
func (s *Service) SendPasswordReset(ctx context.Context, user store.User) error {
	token, err := s.tokens.IssuePasswordResetToken(user.Email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	link := fmt.Sprintf("%s/auth/reset-password/%s", s.appURL, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// Confirm verifies the token's signature, expiry, and that its embedded
// email matches the session user, then flips the confirmed flag.
// Confirming an already-confirmed user is a no-op. All verification
// failures collapse to ErrInvalidConfirmation.
func (s *Service) Confirm(ctx context.Context, user store.User, token string) error {
	if user.Confirmed {
		return nil
	}
	emailAddr, err := s.tokens.VerifyConfirmToken(token)
	if err != nil {
		s.logger.Warn("invalid confirmation token presented", zap.Int64("user_id", user.ID))
		return ErrInvalidConfirmation
	}
	if emailAddr != user.Email {
		s.logger.Warn("confirmation token email mismatch", zap.Int64("user_id", user.ID))
		return ErrInvalidConfirmation
	}
	if err := s.users.ConfirmUser(ctx, user.ID); err != nil {
		return fmt.Errorf("confirm user: %w", err)
	}
	return nil
}

// Profile loads the profile behind a handle as a tagged variant: Full is
// only set when the viewer is the profile owner, and the caller chooses
// the serialization.
func (s *Service) Profile(ctx context.Context, handle string, viewer *store.User) (store.Profile, error) {
	user, err := s.users.UserByURL(ctx, handle)
	if err != nil {
		return store.Profile{}, err
	}
	tools, err := s.users.ListUserTools(ctx, user.ID)
	if err != nil {
		return store.Profile{}, fmt.Errorf("list profile tools: %w", err)
	}
	return store.Profile{
		User:  user,
		Tools: tools,
		Full:  viewer != nil && viewer.ID == user.ID,
	}, nil
}

// SelfProfile loads the authenticated user's own full profile.
func (s *Service) SelfProfile(ctx context.Context, user store.User) (store.Profile, error) {
	tools, err := s.users.ListUserTools(ctx, user.ID)
	if err != nil {
		return store.Profile{}, fmt.Errorf("list own tools: %w", err)
	}
	return store.Profile{User: user, Tools: tools, Full: true}, nil
}
