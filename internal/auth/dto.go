package auth

import (
	"time"

	"github.com/gmihail/shop/internal/users"
	"github.com/gmihail/shop/pkg/auth/session"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3,max=20"`
	Password        string `json:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User    *users.UserDTO  `json:"user"`
	Session session.Session `json:"session"`
}

// ProfileView is the profile page payload.
type ProfileView struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}
