package dto

import "github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"

type SignupRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the outcome of a successful signup or login.
type AuthResult struct {
	User  *models.User
	Token string
}

// Session is the current login as held in session storage. Both fields are
// nil when nobody is logged in.
type Session struct {
	User  *models.User
	Token *string
}

// AuthResponse is the {user, token, error} pair returned by every auth
// endpoint. On failure User and Token are null and Error is set.
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token *string       `json:"token"`
	Error *string       `json:"error"`
}

type SessionResponse struct {
	User  *UserResponse `json:"user"`
	Token *string       `json:"token"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Backend   string `json:"backend"`
	Keys      int    `json:"keys"`
}
