package auth

import (
	"net/http"
	"strings"

	"github.com/agendahub/agendahub/pkg/response"
	"github.com/agendahub/agendahub/svc/user"
)

// Middleware authenticates requests with a Bearer API token. Requests without
// a resolvable token are rejected with 401; on success the user is stored in
// the request context.
func Middleware(users user.Store) func(http.Handler) http.Handler {
	if users == nil {
		panic("auth: user store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Error(w, response.ErrUnauthorized.WithMessage("missing bearer token"))
				return
			}

			u, err := users.ByAPIToken(r.Context(), token)
			if err != nil {
				response.Error(w, response.ErrUnauthorized.WithMessage("invalid api token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserToContext(r.Context(), u)))
		})
	}
}

// RequireSuperadmin rejects authenticated requests from non-superadmins with
// 403. Must run after Middleware.
func RequireSuperadmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := GetUserFromContext(r.Context())
		if u == nil {
			response.Error(w, response.ErrUnauthorized)
			return
		}
		if !u.IsSuperadmin() {
			response.Error(w, response.ErrForbidden.WithMessage("superadmin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
