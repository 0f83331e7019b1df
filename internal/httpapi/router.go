package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP handler chain.
// The balance endpoint is served at /balance and, for clients of the single-function
// deployment, at the root path as well.
func NewRouter(h *Handler, metricsHandler http.Handler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Must see the server's own writer, so it runs before Logger wraps it.
	r.Use(BodyReadDeadline(requestTimeout))
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		r.Use(Timeout(requestTimeout))
		for _, path := range []string{"/", "/balance"} {
			r.Get(path, h.GetBalance)
			r.Post(path, h.Deposit)
		}
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	return r
}
