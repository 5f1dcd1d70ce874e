package middleware

import (
	"net/http"
	"strings"

	"github.com/alamarhq/alamar/internal/handlers/actorctx"
	"github.com/alamarhq/alamar/internal/handlers/render"
	"github.com/alamarhq/alamar/internal/models"
)

type tokenParser interface {
	Parse(tokenString string) (models.Actor, error)
}

// AuthMiddleware resolves the actor from the bearer token and puts it on
// the request context. Requests without a valid token get 401.
func AuthMiddleware(parser tokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			actor, err := parser.Parse(tokenString)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := actorctx.New(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles passes the request through when the actor holds at least one
// of the given roles.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if actor.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			render.ServiceError(w, "Forbidden", http.StatusForbidden)
		})
	}
}
