package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

// NewRouter wires the public and protected routes behind CORS and request logging.
func NewRouter(h *Handlers, sessions SessionValidator, corsOptions cors.Options, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	protected := RequireSession(sessions, log)

	// ---------- PUBLIC ROUTES ----------
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	mux.HandleFunc("POST /api/register", h.Register)
	mux.HandleFunc("POST /api/login", h.Login)

	// ---------- PROTECTED ROUTES ----------
	mux.Handle("POST /api/logout", protected(http.HandlerFunc(h.Logout)))
	mux.Handle("GET /api/users", protected(http.HandlerFunc(h.ListUsers)))
	mux.Handle("GET /api/users/{id}", protected(http.HandlerFunc(h.GetUser)))
	mux.Handle("POST /api/messages", protected(http.HandlerFunc(h.SendMessage)))
	mux.Handle("GET /api/messages/{userId}", protected(http.HandlerFunc(h.GetConversation)))

	handler := cors.New(corsOptions).Handler(mux)
	return RequestLogger(log)(handler)
}

// CorsOptions allows the browser client served from origins to call the API.
func CorsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
}
