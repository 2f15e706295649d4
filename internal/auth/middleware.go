// Package auth guards admin endpoints with a static token check.
package auth

import (
	"crypto/subtle"
	"net/http"
)

// TokenHeader is the request header carrying the admin token.
const TokenHeader = "x-admin-token"

// Middleware provides admin authentication for HTTP handlers.
type Middleware struct {
	token string
}

// NewMiddleware creates an auth middleware checking against the given token.
func NewMiddleware(token string) *Middleware {
	return &Middleware{token: token}
}

// RequireAdmin rejects requests whose x-admin-token header does not exactly
// match the configured token. Rejection happens before the wrapped handler
// runs, so failed requests never touch storage. The comparison is constant
// time.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Unauthorized"}`))
			return
		}
		next(w, r)
	}
}
