package domain

import "time"

// User is a registered account. PasswordHash never leaves the service layer;
// use Public before handing a user to a caller.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	IsOnline     bool
}

// PublicUser is the externally visible view of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
	IsOnline  bool      `json:"isOnline"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		IsOnline:  u.IsOnline,
	}
}

// Session is the identity asserted by a valid session token.
type Session struct {
	ID       string
	Username string
}
