package delivery

import (
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API. generatePerMinute <= 0 disables the limiter.
func RegisterRoutes(r chi.Router, h *Handler, generatePerMinute int) {
	r.Use(middleware.RealIP)

	r.Route("/api", func(api chi.Router) {
		api.Use(
			httputil.RecoverMiddleware,
			RequestLogger(h.log),
		)

		api.Post("/validate-key", h.ValidateKey)

		gen := api.With()
		if generatePerMinute > 0 {
			gen = api.With(httprate.Limit(
				generatePerMinute,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusTooManyRequests, "Generation failed: too many requests, try again in a minute")
				}),
			))
		}
		gen.Post("/generate-presentation", h.GeneratePresentation)

		api.Get("/download/{id}", h.Download)
	})

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	r.Handle("/metrics", promhttp.Handler())
}
