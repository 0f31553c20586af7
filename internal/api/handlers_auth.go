package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/appsquad/tooldir/internal/auth"
	"github.com/appsquad/tooldir/internal/store"
)

func (s *Server) loginGoogle(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"url": s.auth.LoginURL()})
}

func (s *Server) googleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.writeError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	user, token, err := s.auth.HandleCallback(r.Context(), code)
	switch {
	case errors.Is(err, auth.ErrProviderExchange):
		s.writeError(w, http.StatusBadRequest, "Incorrect Google credentials")
		return
	case err != nil:
		s.logger.Error("oauth callback failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}

	s.setAuthCookie(w, token)
	redirect := fmt.Sprintf("%s/auth/google/callback?token=%s&url=%s",
		s.auth.AppURL(), url.QueryEscape(token), url.QueryEscape(user.URL))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (s *Server) refreshGoogleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		s.writeError(w, http.StatusBadRequest, "missing refresh_token")
		return
	}
	refreshed, err := s.auth.RefreshGoogleToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Failed to refresh Google token")
		return
	}
	s.writeJSON(w, http.StatusOK, refreshed)
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	s.clearAuthCookie(w)
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (s *Server) requestConfirmation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := s.auth.SendConfirmation(r.Context(), user, r.Host); err != nil {
		s.logger.Error("confirmation email failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "couldn't send confirmation email")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "confirmation email sent"})
}

func (s *Server) confirmEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	token := chi.URLParam(r, "token")
	err := s.auth.Confirm(r.Context(), user, token)
	switch {
	case errors.Is(err, auth.ErrInvalidConfirmation):
		s.writeError(w, http.StatusBadRequest, "The confirmation link is invalid or has expired.")
		return
	case err != nil:
		s.logger.Error("email confirmation failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}
	http.Redirect(w, r, s.auth.AppURL(), http.StatusTemporaryRedirect)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	profile, err := s.auth.SelfProfile(r.Context(), user)
	if err != nil {
		s.logger.Error("self profile failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}
	s.writeJSON(w, http.StatusOK, renderProfile(profile))
}

func (s *Server) publicProfile(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "url")
	profile, err := s.auth.Profile(r.Context(), handle, s.sessionUser(r))
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		s.logger.Error("profile lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "an error has occured")
		return
	}
	s.writeJSON(w, http.StatusOK, renderProfile(profile))
}

func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req struct {
		Rating   int    `json:"rating"`
		Feedback string `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		s.writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}
	if req.Feedback == "" {
		s.writeError(w, http.StatusBadRequest, "feedback must not be empty")
		return
	}
	if err := s.mailer.SendFeedback(r.Context(), user.Email, req.Rating, req.Feedback); err != nil {
		s.logger.Error("feedback email failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to send feedback email")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback submitted successfully"})
}
