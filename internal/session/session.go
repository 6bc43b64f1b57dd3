package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tair/voltmarket/internal/domain"
)

// ErrNoExpiry is returned by ExpiresAt when the token carries no exp claim
var ErrNoExpiry = errors.New("token has no expiry")

// Session is the persisted identity of the device user.
// An absent token is "" and an absent user id is 0.
type Session struct {
	Token     string
	UserID    int64
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// LoggedIn is true iff both token and user id are present
func (s Session) LoggedIn() bool {
	return s.Token != "" && s.UserID != 0
}

// normalized collapses an incomplete identity to the empty session
func (s Session) normalized() Session {
	if !s.LoggedIn() {
		return Session{}
	}
	return s
}

// FromAuth builds a session from a login or register response
func FromAuth(resp *domain.AuthResponse) Session {
	return Session{
		Token:     resp.Token,
		UserID:    resp.UserID,
		Email:     resp.Email,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
	}
}

// ExpiresAt reads the exp claim of the token without verifying its signature.
// Only the backend can verify; this is informational.
func (s Session) ExpiresAt() (time.Time, error) {
	if s.Token == "" {
		return time.Time{}, domain.ErrNotAuthenticated
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// Store persists a session across restarts. Implementations write all fields
// together: a reader never sees a mix of two sessions.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
