package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Role types
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a marketplace account
type User struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"nombre"`
	LastName  string  `json:"apellido"`
	AvatarURL *string `json:"avatarUrl"`
	Role      string  `json:"role"`
}

// Validate rejects users without identity
func (u User) Validate() error {
	if u.ID <= 0 {
		return errors.New("user id is required")
	}
	if u.Email == "" {
		return fmt.Errorf("user %d: email is required", u.ID)
	}
	return nil
}

// FullName joins first and last name
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the uppercase first letters of first and last name
func (u User) Initials() string {
	return strings.ToUpper(firstRune(u.FirstName) + firstRune(u.LastName))
}

// IsAdmin checks if user has admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateProfileRequest is the body for editing the current profile
type UpdateProfileRequest struct {
	FirstName *string `json:"nombre"`
	LastName  *string `json:"apellido"`
	AvatarURL *string `json:"avatarUrl"`
}

// LoginRequest is the body for auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body for auth/register
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Role      string `json:"role"`
}

// Validate requires the identity fields a session is built from
func (r AuthResponse) Validate() error {
	if r.Token == "" {
		return errors.New("auth response: token is required")
	}
	if r.UserID <= 0 {
		return errors.New("auth response: userId is required")
	}
	return nil
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}
