package identity

import (
	"strings"
	"time"
)

// User is a registered player.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Public is the projection of a user that may leave the service.
type Public struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips credentials from the user.
func (u User) Public() Public {
	return Public{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewUser is the data required to insert a user row.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash []byte
}

// Standing is a user's USD balance as read for ranking.
type Standing struct {
	ID         int64
	Name       string
	USDBalance float64
}

// Credentials request structure.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
