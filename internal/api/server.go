package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/appsquad/tooldir/internal/auth"
	"github.com/appsquad/tooldir/internal/email"
	"github.com/appsquad/tooldir/internal/tool"
)

// accessTokenCookie is the session cookie name; its value is
// "Bearer <jwt>".
const accessTokenCookie = "access_token"

// Server wires HTTP handlers to the auth and tool services.
type Server struct {
	router chi.Router
	auth   *auth.Service
	tools  *tool.Service
	mailer email.Mailer
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(authSvc *auth.Service, toolSvc *tool.Service, mailer email.Mailer, logger *zap.Logger) *Server {
	s := &Server{
		auth:   authSvc,
		tools:  toolSvc,
		mailer: mailer,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login/google", s.loginGoogle)
		r.Get("/callback/google", s.googleCallback)
		r.Post("/refresh-google-token", s.refreshGoogleToken)
		r.Post("/logout", s.logout)
		r.Get("/users/{url}", s.publicProfile)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/confirm/new", s.requestConfirmation)
			r.Get("/confirm/{token}", s.confirmEmail)
			r.Get("/users/me", s.me)
			r.Post("/feedback", s.submitFeedback)
		})
	})

	r.Route("/tool", func(r chi.Router) {
		r.Get("/{tool_id}/review", s.getReview)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.addTool)
			r.Delete("/{tool_id}", s.removeTool)
			r.Post("/{tool_id}/review", s.uploadReview)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// setAuthCookie attaches the session cookie carrying the signed token.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "Bearer " + token,
		Path:     "/",
		MaxAge:   int(s.auth.Tokens().AccessTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookie expires the session cookie.
func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"detail": msg})
}
