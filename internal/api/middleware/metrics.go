package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/blazeboard/internal/metrics"
	"github.com/mcoot/blazeboard/internal/middleware"
)

// Metrics records request counts and latency labelled by route template,
// so /api/players/{id} is one series regardless of the id.
func Metrics(recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := middleware.WrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			recorder.HTTPRequest(r.Method, route, wrapped.Status(), time.Since(start))
		})
	}
}
