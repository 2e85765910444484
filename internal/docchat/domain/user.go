package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string // trimmed, lower-cased
	PasswordHash string // argon2id PHC string, or legacy bcrypt
	ProfileImage string
	CreatedAt    time.Time
}

// Profile is the user as other parties may see it. It has no hash field, so
// a Profile can be returned or logged without redaction.
type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

// NormalizeEmail is the canonical form used for storage and lookup, which
// makes email uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
