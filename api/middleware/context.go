package middleware

import (
	"context"

	"github.com/gmihail/shop/internal/identity"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxPrincipal contextKey = "principal"
	ctxAccessID  contextKey = "access_id"
	ctxAuthErr   contextKey = "auth_error"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// PrincipalFromContext returns the claims of the caller, or nil when the
// request is anonymous.
func PrincipalFromContext(ctx context.Context) identity.Principal {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxPrincipal).(identity.Principal); ok {
		return v
	}
	return nil
}

// AccessIDFromContext returns the jti of the access token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithPrincipal injects an authenticated principal and its user id.
func WithPrincipal(ctx context.Context, p identity.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxPrincipal, p)
	if userID, ok := identity.Resolve(p); ok {
		ctx = context.WithValue(ctx, ctxUserID, userID)
	}
	if accessID := p[identity.ClaimTokenID]; accessID != "" {
		ctx = context.WithValue(ctx, ctxAccessID, accessID)
	}
	return ctx
}

func withAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, ctxAuthErr, err)
}

func authErrorFromContext(ctx context.Context) error {
	if err, ok := ctx.Value(ctxAuthErr).(error); ok {
		return err
	}
	return nil
}
