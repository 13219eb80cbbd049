package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	LoginMethodLocal = "local"
	LoginMethodOAuth = "oauth"
)

// User is an account record. Local accounts carry Username+PasswordHash,
// OAuth accounts carry OpenID; never both.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	OpenID       string    `json:"openId,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	LoginMethod  string    `json:"loginMethod"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

// PublicUser is the shape returned to clients after register/login.
type PublicUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
	}
}
