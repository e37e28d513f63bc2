package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"cnpgdemo/shared/constant"
)

func (a *appMiddleware) Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

		ctx, scope := a.otel.NewScope(r.Context(), otelHTTPScopeName, spanName)
		defer scope.End()

		scope.SetAttributes(map[string]any{
			"app.name":        a.config.App.Name,
			"http.path":       r.URL.Path,
			"http.method":     r.Method,
			"http.user_agent": r.Header.Get(constant.RequestHeaderUserAgent),
			"http.host":       r.Host,
			"http.source":     r.RemoteAddr,
			"http.request_id": GetRequestID(ctx),
		})

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		scope.SetAttributes(map[string]any{
			"http.route":       routePattern(r),
			"http.status_code": status,
		})

		if status >= http.StatusInternalServerError {
			scope.TraceError(fmt.Errorf("http status %d", status))
		}
	})
}
