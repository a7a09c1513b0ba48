package models

import "time"

// Role is the closed set of account roles. The string values are the ones
// found in persisted data stores and must not change.
type Role string

const (
	RolePatient      Role = "patient"
	RolePhysician    Role = "medecin"
	RoleReceptionist Role = "secretaire"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RolePhysician, RoleReceptionist, RoleAdmin:
		return true
	}
	return false
}

// User is an account stored under "users:<id>". Password holds the encoded
// form produced by the configured password hasher, never the clear text.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`

	// Patient-only fields. Patients live in the users collection.
	MedecinID string `json:"medecin_id,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// Stamp assigns the id. A caller-supplied creation time is kept.
func (u User) Stamp(id string, now time.Time) User {
	u.ID = id
	if u.CreatedAt == "" {
		u.CreatedAt = Timestamp(now)
	}
	return u
}
