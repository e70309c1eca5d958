package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gmihail/shop/api/responses"
	"github.com/gmihail/shop/api/validators"
	"github.com/gmihail/shop/internal/identity"
	pkgAuth "github.com/gmihail/shop/pkg/auth"
	"github.com/gmihail/shop/pkg/auth/session"
	"github.com/gmihail/shop/pkg/config"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/logger"
)

const (
	sourceCookie = "cookie"
	sourceHeader = "header"
)

// Identify resolves the caller from the session cookie or a bearer header.
// It never rejects a request: anonymous callers pass through without a
// principal and RequireUser decides what to do with them.
func Identify(cfg config.JWTConfig, verifier session.AccessSessionChecker, cookies session.Store, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, source := requestToken(r, cookies)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil || claims.ID == "" {
				if source == sourceCookie && cookies != nil {
					cookies.Destroy(w)
				}
				warn(ctx, logg, "auth.token.rejected", source)
				next.ServeHTTP(w, r)
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(ctx, claims.ID)
				if err != nil {
					ctx = withAuthError(ctx, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				if !ok {
					if source == sourceCookie && cookies != nil {
						cookies.Destroy(w)
					}
					warn(ctx, logg, "auth.session.revoked", source)
					next.ServeHTTP(w, r)
					return
				}
			}

			principal := identity.FromClaims(claims)
			ctx = WithPrincipal(ctx, principal)
			if logg != nil {
				if userID, ok := identity.Resolve(principal); ok {
					ctx = logg.WithUserID(ctx, userID)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser answers 401 unless Identify resolved a user id.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if err := authErrorFromContext(ctx); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if _, ok := identity.Resolve(PrincipalFromContext(ctx)); !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestToken prefers the session cookie over the Authorization header.
func requestToken(r *http.Request, cookies session.Store) (string, string) {
	if cookies != nil {
		if s, ok := cookies.Load(r); ok && strings.TrimSpace(s.AccessToken) != "" {
			return strings.TrimSpace(s.AccessToken), sourceCookie
		}
	}
	if token, err := validators.BearerToken(r.Header.Get("Authorization")); err == nil {
		return token, sourceHeader
	}
	return "", ""
}

func warn(ctx context.Context, logg *logger.Logger, msg, source string) {
	if logg == nil {
		return
	}
	logg.Warn(logg.WithField(ctx, "token_source", source), msg)
}
