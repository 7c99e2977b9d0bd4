package models

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account owning a collection of contacts. The legacy browser
// client speaks Spanish field names, so the wire tags keep them.
type User struct {
	ID           string    `json:"_id"`
	Handle       string    `json:"usuario"`
	Email        string    `json:"correo"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Handle) == "" {
		return errors.New("usuario required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid correo")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
