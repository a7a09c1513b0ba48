package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/session"
)

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidRole     = errors.New("invalid role")
)

// AuthService manages the single session held in session storage on top of
// the users collection.
type AuthService struct {
	users    *repository.Users
	sessions session.Storage
	hasher   PasswordHasher
	tokens   TokenIssuer
	now      func() time.Time
}

func NewAuthService(users *repository.Users, sessions session.Storage, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		now:      time.Now,
	}
}

// NewCredentials returns the hasher and token issuer for the configured
// AUTH_MODE.
func NewCredentials(cfg *config.Config) (PasswordHasher, TokenIssuer) {
	if cfg.AuthMode == config.AuthModeSecure {
		return BcryptHasher{}, JWTTokens{Secret: []byte(cfg.JWTSecret), Expiry: cfg.JWTExpiry}
	}
	return LegacyHasher{}, LegacyTokens{}
}

// Tokens exposes the issuer so transport middleware verifies tokens the same
// way the service issues them.
func (s *AuthService) Tokens() TokenIssuer {
	return s.tokens
}

// Signup creates an account and opens a session for it. An empty role means
// patient. Admin accounts cannot be self-registered.
func (s *AuthService) Signup(email, password, name string, role models.Role) (*dto.AuthResult, error) {
	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if role == "" {
		role = models.RolePatient
	}
	if !signupRole(role) {
		return nil, ErrInvalidRole
	}

	encoded, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	user, err := s.users.Create(models.User{
		Email:     email,
		Password:  encoded,
		Name:      name,
		Role:      role,
		CreatedAt: models.Timestamp(s.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	token, err := s.openSession(user)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	slog.Info("user signed up", "user_id", user.ID, "role", user.Role)
	return &dto.AuthResult{User: user, Token: token}, nil
}

// Login checks the password against the stored encoding and opens a fresh
// session.
func (s *AuthService) Login(email, password string) (*dto.AuthResult, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, ErrInvalidPassword
	}

	token, err := s.openSession(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID)
	return &dto.AuthResult{User: user, Token: token}, nil
}

// Logout clears the session. Calling it without a session is fine.
func (s *AuthService) Logout() {
	s.sessions.RemoveItem(session.TokenKey)
	s.sessions.RemoveItem(session.UserKey)
}

// GetSession reads the current session. It never fails: anything missing or
// unreadable comes back as nil.
func (s *AuthService) GetSession() dto.Session {
	var out dto.Session

	if token, ok := s.sessions.GetItem(session.TokenKey); ok {
		out.Token = &token
	}
	if raw, ok := s.sessions.GetItem(session.UserKey); ok {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			out.User = &user
		} else {
			slog.Warn("unreadable session user", "error", err)
		}
	}
	return out
}

func (s *AuthService) GenerateToken(userID string) (string, error) {
	return s.tokens.Generate(userID)
}

func (s *AuthService) VerifyToken(token string) bool {
	return s.tokens.Verify(token)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}

func (s *AuthService) VerifyPassword(password, encoded string) (bool, error) {
	return s.hasher.Verify(password, encoded)
}

func (s *AuthService) openSession(user *models.User) (string, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	s.sessions.SetItem(session.TokenKey, token)
	s.sessions.SetItem(session.UserKey, string(encoded))
	return token, nil
}

func signupRole(r models.Role) bool {
	switch r {
	case models.RolePatient, models.RolePhysician, models.RoleReceptionist:
		return true
	}
	return false
}
