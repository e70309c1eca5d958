// Package identity maps an authenticated principal to the user id that owns
// carts and profiles.
package identity

import (
	"strings"

	pkgauth "github.com/gmihail/shop/pkg/auth"
)

const (
	ClaimSubject = "sub"
	ClaimEmail   = "email"
	ClaimTokenID = "jti"
)

// Principal is the claim set of an authenticated caller.
type Principal map[string]string

// Resolve returns the subject claim of p. ok is false when p is nil or the
// subject is missing or blank, which callers must treat as unauthenticated.
func Resolve(p Principal) (userID string, ok bool) {
	if p == nil {
		return "", false
	}
	sub := strings.TrimSpace(p[ClaimSubject])
	if sub == "" {
		return "", false
	}
	return sub, true
}

// FromClaims adapts parsed access token claims into a Principal.
func FromClaims(claims *pkgauth.AccessTokenClaims) Principal {
	if claims == nil {
		return nil
	}
	p := Principal{ClaimSubject: claims.Subject}
	if claims.Email != "" {
		p[ClaimEmail] = claims.Email
	}
	if claims.ID != "" {
		p[ClaimTokenID] = claims.ID
	}
	return p
}
