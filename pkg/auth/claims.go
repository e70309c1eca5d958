package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	// JTI is generated when empty.
	JTI string
}

// AccessTokenClaims is the typed JWT issued to clients. The subject claim
// carries the user id.
type AccessTokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// MintedToken is a signed access token plus the values needed to track it.
type MintedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
	TTL       time.Duration
}
