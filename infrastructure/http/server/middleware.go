package server

import (
	"dm-lab/auth"
	"dm-lab/domain"
	"log/slog"
	"net/http"
	"time"
)

type SessionValidator interface {
	ValidateSession(token string) (domain.Session, error)
}

// RequireSession rejects requests without a valid bearer token and stores the
// session in the request context for the handlers.
func RequireSession(sessions SessionValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Authorization token is missing"})
				return
			}
			session, err := sessions.ValidateSession(token)
			if err != nil {
				log.Debug("Session rejected", "path", r.URL.Path, "error", err)
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid or expired token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}
