package controllers

import (
	"net/http"

	"github.com/gmihail/shop/api/middleware"
	"github.com/gmihail/shop/api/responses"
	"github.com/gmihail/shop/api/validators"
	"github.com/gmihail/shop/internal/auth"
	pkgAuth "github.com/gmihail/shop/pkg/auth"
	"github.com/gmihail/shop/pkg/auth/session"
	"github.com/gmihail/shop/pkg/config"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/logger"
)

// AuthRegister creates the account and signs the new user in.
func AuthRegister(svc auth.Service, cookies session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.Email = validators.SanitizeEmail(body.Email)
		body.Username = validators.SanitizeUsername(body.Username, 0)

		user, err := svc.SignUp(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.SignIn(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if cookies != nil {
			cookies.Save(w, sess)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, auth.AuthResponse{User: user, Session: sess})
	}
}

// AuthLogin verifies credentials and persists the session cookie.
func AuthLogin(svc auth.Service, cookies session.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.SignIn(r.Context(), validators.SanitizeEmail(body.Email), body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sess.Persistent = body.RememberMe

		resp := auth.AuthResponse{Session: sess}
		if sess.User != nil {
			user, err := svc.GetUserByID(r.Context(), sess.User.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			resp.User = user
		}

		if cookies != nil {
			cookies.Save(w, sess)
		}
		responses.WriteSuccess(w, resp)
	}
}

// AuthLogout revokes the caller's session and clears the cookies. Expired
// tokens can still sign out.
func AuthLogout(svc auth.Service, cookies session.Store, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			accessID = presentedAccessID(r, cookies, cfg)
		}

		if err := svc.SignOut(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if cookies != nil {
			cookies.Destroy(w)
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// presentedAccessID reads the jti of whatever token came with the request,
// ignoring expiry.
func presentedAccessID(r *http.Request, cookies session.Store, cfg config.JWTConfig) string {
	token := ""
	if cookies != nil {
		if sess, ok := cookies.Load(r); ok {
			token = sess.AccessToken
		}
	}
	if token == "" {
		token, _ = validators.BearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		return ""
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		return ""
	}
	return claims.ID
}
