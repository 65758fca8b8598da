package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// headerRequestID is the correlation header shared with upstream proxies.
const headerRequestID = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestID tags every request with a correlation id. An inbound
// X-Request-ID is kept so ids survive proxy hops; otherwise a fresh UUID is
// generated. The id is echoed on the response and stored in the context,
// where handlers pick it up for the response envelope meta.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation id from the request context, or ""
// outside the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
