/*
auth.go - Request identity resolution

PURPOSE:
  Every API route is scoped to the acting user. Identity itself is owned
  by an external session provider; this service only consumes a verified
  user ID per request.

DEPLOYMENT:
  HeaderAuthenticator trusts a forwarded identity header and is meant to
  sit behind a gateway that has already verified the session. Wire a
  different Authenticator for direct token verification.
*/
package api

import (
	"context"
	"errors"
	"net/http"
)

// ErrNoIdentity is returned when a request carries no user identity.
var ErrNoIdentity = errors.New("no user identity on request")

// Authenticator resolves the acting user for a request.
type Authenticator interface {
	UserID(r *http.Request) (string, error)
}

// HeaderAuthenticator reads the user ID from a trusted forwarded header.
type HeaderAuthenticator struct {
	// Header names the identity header; empty means "X-User-ID".
	Header string
}

func (a HeaderAuthenticator) UserID(r *http.Request) (string, error) {
	name := a.Header
	if name == "" {
		name = "X-User-ID"
	}
	id := r.Header.Get(name)
	if id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}

type contextKey int

const userContextKey contextKey = iota

// RequireUser authenticates each request and stashes the user ID in the
// request context. Unidentified requests get 401.
func RequireUser(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.UserID(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Missing or invalid identity", err)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFrom returns the authenticated user ID placed by RequireUser.
func userFrom(ctx context.Context) string {
	id, _ := ctx.Value(userContextKey).(string)
	return id
}
