package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	apperrors "microbus/pkg/errors"
	httputil "microbus/pkg/http"
	"microbus/pkg/model"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom returns the authenticated identity stored by RequireAuth.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}

// RequireAuth wraps a route with bearer-token verification. On success the
// identity is placed in the request context for the handler and any nested
// middleware.
func RequireAuth(secret string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			_ = httputil.WriteError(w, apperrors.Unauthorized("Missing bearer token"))
			return
		}

		identity, err := ParseSessionToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// Must run inside RequireAuth.
func RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, ok := IdentityFrom(r.Context())
		if !ok || identity.Role != model.RoleAdmin {
			_ = httputil.WriteError(w, apperrors.Forbidden("Administrator access required"))
			return
		}
		next(w, r, ps)
	}
}
