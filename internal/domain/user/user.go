package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is what signup hands back to the client.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	ID    string `json:"id"`
}

func (u User) Profile() Profile {
	return Profile{Email: u.Email, Name: u.Name, ID: u.ID}
}
