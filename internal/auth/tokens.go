package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers every access-token failure: missing,
	// malformed, expired, or forged. The caller only ever sees a
	// generic 401.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidConfirmation covers every confirmation-link failure
	// (bad signature, expired, email mismatch) so the response never
	// reveals which check rejected the token.
	ErrInvalidConfirmation = errors.New("the confirmation link is invalid or has expired")
)

// Salts namespace the signing key per token purpose, so a confirmation
// token can never pass as an access token and vice versa.
const (
	emailConfirmSalt  = "email-confirmation-salt"
	passwordResetSalt = "password-reset-salt"
)

// TokenIssuer signs and verifies the session and confirmation tokens.
// Everything is an HS256 JWT with the subject set to the user's email;
// purpose-bound tokens mix a salt into the signing key.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	confirmTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer builds a TokenIssuer with the given lifetimes.
func NewTokenIssuer(secret string, accessTTL, confirmTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		confirmTTL: confirmTTL,
		now:        time.Now,
	}
}

// AccessTTL exposes the access-token lifetime (the cookie max-age).
func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

func (t *TokenIssuer) sign(email, salt string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": t.now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key(salt))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// key derives the purpose-bound signing key without mutating the shared
// secret slice.
func (t *TokenIssuer) key(salt string) []byte {
	return append(append([]byte{}, t.secret...), salt...)
}

func (t *TokenIssuer) verify(tokenString, salt string) (string, error) {
	key := t.key(salt)
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// IssueAccessToken issues the short-lived session token for the email.
func (t *TokenIssuer) IssueAccessToken(email string) (string, error) {
	return t.sign(email, "", t.accessTTL)
}

// VerifyAccessToken returns the email a session token was issued for.
func (t *TokenIssuer) VerifyAccessToken(token string) (string, error) {
	return t.verify(token, "")
}

// IssueConfirmToken issues the time-boxed email-confirmation token.
func (t *TokenIssuer) IssueConfirmToken(email string) (string, error) {
	return t.sign(email, emailConfirmSalt, t.confirmTTL)
}

// VerifyConfirmToken returns the email embedded in a confirmation token,
// or ErrInvalidConfirmation for any signature or expiry failure.
func (t *TokenIssuer) VerifyConfirmToken(token string) (string, error) {
	email, err := t.verify(token, emailConfirmSalt)
	if err != nil {
		return "", ErrInvalidConfirmation
	}
	return email, nil
}

// IssuePasswordResetToken issues a one-hour reset token.
func (t *TokenIssuer) IssuePasswordResetToken(email string) (string, error) {
	return t.sign(email, passwordResetSalt, time.Hour)
}

// VerifyPasswordResetToken returns the email embedded in a reset token.
func (t *TokenIssuer) VerifyPasswordResetToken(token string) (string, error) {
	email, err := t.verify(token, passwordResetSalt)
	if err != nil {
		return "", ErrInvalidConfirmation
	}
	return email, nil
}
