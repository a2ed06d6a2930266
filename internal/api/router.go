package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vocab/internal/metrics"
	"github.com/starford/vocab/internal/session"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// m, if non-nil, records per-route request metrics.
func NewRouter(svc *session.Service, authEnabled bool, token string, sseHandler http.Handler, m *metrics.Metrics) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/status", h.Status)

	// Topics and words of the working list.
	r.Get("/topics", h.ListTopics)
	r.Post("/topics", h.InsertTopic)
	r.Get("/topics/{pos}", h.GetTopic)
	r.Delete("/topics/{pos}", h.RemoveTopic)
	r.Post("/topics/{pos}/words", h.AddWord)
	r.Put("/topics/{pos}/words/{word}", h.ChangeWord)
	r.Delete("/topics/{pos}/words/{word}", h.RemoveWord)

	// Queries.
	r.Get("/search", h.SearchWord)
	r.Get("/prefix/{letter}", h.WordsStartingWith)

	// Persistence and vault files.
	r.Post("/load", h.Load)
	r.Post("/save", h.Save)
	r.Get("/files", h.ListFiles)
	r.Post("/files", h.Import)
	r.Post("/files/move", h.MoveFile)
	r.Delete("/files/*", h.DeleteFile)
	r.Get("/vault/search", h.SearchVault)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
