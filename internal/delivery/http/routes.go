package http

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmuslimabdulj/goat-lobby/internal/middleware"
)

// Routes builds the router. apiLimiter guards the JSON endpoints and
// wsLimiter the websocket upgrade.
func (h *Handler) Routes(apiLimiter, wsLimiter *middleware.IPRateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	r.Get("/healthz", h.HandleHealth)
	r.With(middleware.RateLimit(wsLimiter)).Get("/ws", h.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(apiLimiter))
		r.Use(middleware.CORS(h.cfg.OriginAllowed))
		r.Get("/api/lobbies", h.HandleLobbies)
		r.Options("/api/lobbies", func(w http.ResponseWriter, r *http.Request) {})
		r.Get("/status", h.HandleStatus)
	})

	// Client bundle
	if dir := h.cfg.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		} else {
			h.log.Sugar().Warnf("static dir %s unavailable, client bundle not served: %v", dir, err)
		}
	}

	return r
}
