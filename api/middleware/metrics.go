package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gmihail/shop/pkg/metrics"
)

// Metrics records every request against its chi route pattern.
func Metrics(recorder *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			// unmatched paths share one label
			recorder.Observe(r.Method, chiRoutePattern(r), rec.statusOrOK(), time.Since(start))
		})
	}
}

// chiRoutePattern is the matched route template, empty outside a chi router.
func chiRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
