package middleware

import (
	"context"
	"net/http"
)

// SessionChecker is the slice of the session store the guards need.
type SessionChecker interface {
	RequireLogin(ctx context.Context) bool
	RequireAdmin(ctx context.Context) bool
}

// RequireLogin rejects requests without an active session with 401. The
// client is expected to navigate to the login page.
func RequireLogin(sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.RequireLogin(r.Context()) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests whose session is missing or not an
// administrator's with 403. The client is expected to navigate home.
func RequireAdmin(sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.RequireAdmin(r.Context()) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
