package delivery

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger writes one line per API request. Bodies and query strings
// are never logged since they may carry API keys.
func RequestLogger(log *logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := "info"
			if ww.Status() >= http.StatusInternalServerError {
				level = "error"
			}
			log.Log(logger.LogEntry{
				Level: level,
				Message: fmt.Sprintf("%s %s -> %d (%d bytes, %s) from %s",
					r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start).Round(time.Millisecond), r.RemoteAddr),
				Service: "paper2deck",
			})
		})
	}
}
