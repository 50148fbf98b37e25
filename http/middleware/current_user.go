package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/xy-planning-network/messleave"
	"github.com/xy-planning-network/messleave/auth"
	"github.com/xy-planning-network/messleave/http/resp"
)

// A SessionVerifier validates a bearer token and decodes the auth.Session it carries.
type SessionVerifier interface {
	VerifyRequest(token string) (auth.Session, error)
}

// CurrentUser pulls a bearer token out of the "Authorization" header,
// verifies it, and stashes the decoded auth.Session in the *http.Request.Context
// under messleave.CurrentUserKey.
//
// A request without an "Authorization" header passes through untouched;
// whether that is acceptable is for access control middlewares to determine.
// A request presenting an invalid or expired token is rejected with 401.
//
// A *resp.Responder is needed to write the rejection.
func CurrentUser(d *resp.Responder, verifier SessionVerifier) Adapter {
	if d == nil || verifier == nil {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header)
			if !ok {
				handler.ServeHTTP(w, r)
				return
			}

			s, err := verifier.VerifyRequest(token)
			if err != nil {
				d.Err(w, r, err, resp.Code(http.StatusUnauthorized))
				return
			}

			w.Header().Add("Cache-control", "no-store")
			w.Header().Add("Pragma", "no-cache")

			ctx := context.WithValue(r.Context(), messleave.CurrentUserKey, s)
			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// RequireAuthed returns a middleware.Adapter that checks whether a session is authenticated,
// and requires it be authenticated.
// When the session is authenticated, RequireAuthed hands off to the next part of the middleware chain.
//
// Authenticated means an auth.Session is set in the request context under the provided key.
//
// When the session is not authenticated, RequireAuthed writes 401 to the client.
func RequireAuthed(key messleave.Key) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Value(key).(auth.Session); !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// bearerToken plucks the token out of an "Authorization: Bearer" header.
func bearerToken(header http.Header) (string, bool) {
	v := header.Get("Authorization")
	if v == "" {
		return "", false
	}

	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
