package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// Middleware guards a route group with bearer-token validation. The
// `Bearer ` prefix is tolerated but not required, matching what clients
// actually send.
func Middleware(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if token == "" {
				unauthorized(w, "Authentication token not found. Please log in again.")
				return
			}

			userID, err := svc.Validate(r.Context(), token)
			if err != nil {
				unauthorized(w, "Your session has expired. Please log in again.")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminID returns the authenticated admin's user id, if any.
func AdminID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"` + message + `"}`))
}
