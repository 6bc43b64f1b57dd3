package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tair/voltmarket/internal/domain"
)

// GetFavorites lists the favorites of userID
func (c *Client) GetFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error) {
	return callList[domain.Favorite](ctx, c, request{
		method: http.MethodGet,
		route:  "favorites/{userId}",
		path:   fmt.Sprintf("favorites/%d", userID),
	})
}

// AddFavorite saves productID for userID
func (c *Client) AddFavorite(ctx context.Context, userID, productID int64) (*domain.Favorite, error) {
	f, err := call[domain.Favorite](ctx, c, request{
		method: http.MethodPost,
		route:  "favorites/{userId}/{productId}",
		path:   fmt.Sprintf("favorites/%d/%d", userID, productID),
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// RemoveFavorite unsaves productID for userID
func (c *Client) RemoveFavorite(ctx context.Context, userID, productID int64) (*domain.SuccessResponse, error) {
	resp, err := call[domain.SuccessResponse](ctx, c, request{
		method: http.MethodDelete,
		route:  "favorites/{userId}/{productId}",
		path:   fmt.Sprintf("favorites/%d/%d", userID, productID),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckFavorite reports whether productID is among userID's favorites
func (c *Client) CheckFavorite(ctx context.Context, userID, productID int64) (bool, error) {
	return callFlag(ctx, c, request{
		method: http.MethodGet,
		route:  "favorites/{userId}/check/{productId}",
		path:   fmt.Sprintf("favorites/%d/check/%d", userID, productID),
	}, "isFavorite")
}
