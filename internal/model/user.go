package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsBanned     bool      `json:"is_banned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the snapshot of a user bound to a live connection.
// It is resolved once, at connect time, and never refreshed afterwards.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsBanned bool   `json:"-"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, IsBanned: u.IsBanned}
}

type UserProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IsBanned  bool      `json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
}
