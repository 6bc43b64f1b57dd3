package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tair/voltmarket/internal/domain"
)

// Login authenticates with email and password. Never sends a stored token.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	resp, err := call[domain.AuthResponse](ctx, c, request{
		method: http.MethodPost,
		route:  "auth/login",
		path:   "auth/login",
		body:   req,
		public: true,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its session. Never sends a stored token.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	resp, err := call[domain.AuthResponse](ctx, c, request{
		method: http.MethodPost,
		route:  "auth/register",
		path:   "auth/register",
		body:   req,
		public: true,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUser fetches a user profile
func (c *Client) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := call[domain.User](ctx, c, request{
		method: http.MethodGet,
		route:  "api/users/{id}",
		path:   fmt.Sprintf("api/users/%d", userID),
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile edits the profile of userID
func (c *Client) UpdateProfile(ctx context.Context, userID int64, req domain.UpdateProfileRequest) (*domain.User, error) {
	u, err := call[domain.User](ctx, c, request{
		method: http.MethodPut,
		route:  "api/users/{id}",
		path:   fmt.Sprintf("api/users/%d", userID),
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
