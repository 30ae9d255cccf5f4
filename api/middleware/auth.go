package middleware

import (
	"net/http"

	"github.com/afrifood/afrifood-backend/api/responses"
	"github.com/afrifood/afrifood-backend/api/validators"
	pkgAuth "github.com/afrifood/afrifood-backend/pkg/auth"
	"github.com/afrifood/afrifood-backend/pkg/auth/session"
	"github.com/afrifood/afrifood-backend/pkg/config"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

// Auth admits requests carrying a valid admin token whose session is still
// open. The event stream cannot set headers from EventSource, so a token in
// the access_token query parameter is accepted as well.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := validators.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				token, ok = validators.BearerToken(r.URL.Query().Get("access_token"))
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				open, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !open {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
			}

			adminID := claims.AdminID.String()
			ctx := WithAdmin(r.Context(), adminID, claims.ID)
			if logg != nil {
				ctx = logg.WithAdminID(ctx, adminID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
