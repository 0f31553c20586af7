// Package api hosts the HTTP server, middleware, and REST handlers.
// Notable routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - /auth/... for the Google OAuth flow, sessions, profiles, email
//     confirmation, and feedback.
//   - /tool/... for tool registration and audio reviews.
package api
