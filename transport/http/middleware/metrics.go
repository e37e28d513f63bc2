package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Metrics times every request, including the ones that panic. A panic is
// counted as a 500 and then re-raised for the recoverer.
func (a *appMiddleware) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			status := ww.Status()

			p := recover()
			if p != nil {
				status = http.StatusInternalServerError
			}

			if status == 0 {
				status = http.StatusOK
			}

			a.metrics.ObserveRequest(r.Method, routePattern(r), status, time.Since(start))

			if p != nil {
				panic(p)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
