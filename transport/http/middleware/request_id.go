package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"cnpgdemo/shared/constant"
)

const maxRequestIDLength = 128

// RequestID keeps a caller supplied X-Request-ID or generates one, and echoes it back.
func (a *appMiddleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constant.RequestHeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		w.Header().Set(constant.RequestHeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), constant.ContextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(constant.ContextKeyRequestID).(string)

	return requestID
}
