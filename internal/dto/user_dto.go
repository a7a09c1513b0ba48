package dto

import "github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"

// UserResponse is a user as sent over the wire. The encoded password never
// leaves the server.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	CreatedAt string      `json:"createdAt"`
	MedecinID string      `json:"medecin_id,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	BirthDate string      `json:"birthDate,omitempty"`
}

func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		MedecinID: u.MedecinID,
		Phone:     u.Phone,
		Address:   u.Address,
		BirthDate: u.BirthDate,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *NewUserResponse(&users[i]))
	}
	return out
}

// CreateUserRequest creates a user record directly, bypassing signup. It is
// how receptionists register patients.
type CreateUserRequest struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	MedecinID string      `json:"medecin_id,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	BirthDate string      `json:"birthDate,omitempty"`
}
