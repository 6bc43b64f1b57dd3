package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tair/voltmarket/internal/domain"
)

// AddLike likes a product as the current user
func (c *Client) AddLike(ctx context.Context, productID int64) (*domain.Like, error) {
	l, err := call[domain.Like](ctx, c, request{
		method: http.MethodPost,
		route:  "api/likes",
		path:   "api/likes",
		body:   domain.LikeRequest{ProductID: productID},
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// RemoveLike withdraws the current user's like
func (c *Client) RemoveLike(ctx context.Context, productID int64) (*domain.SuccessResponse, error) {
	resp, err := call[domain.SuccessResponse](ctx, c, request{
		method: http.MethodDelete,
		route:  "api/likes/{productId}",
		path:   fmt.Sprintf("api/likes/%d", productID),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProductLikes returns the like count and whether the current user liked it
func (c *Client) GetProductLikes(ctx context.Context, productID int64) (*domain.LikesResponse, error) {
	resp, err := call[domain.LikesResponse](ctx, c, request{
		method: http.MethodGet,
		route:  "api/likes/product/{productId}",
		path:   fmt.Sprintf("api/likes/product/%d", productID),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsLiked reports whether the current user liked productID
func (c *Client) IsLiked(ctx context.Context, productID int64) (bool, error) {
	return callFlag(ctx, c, request{
		method: http.MethodGet,
		route:  "api/likes/check/{productId}",
		path:   fmt.Sprintf("api/likes/check/%d", productID),
	}, "isLiked")
}

// GetComments lists the comments on a product
func (c *Client) GetComments(ctx context.Context, productID int64) ([]domain.Comment, error) {
	return callList[domain.Comment](ctx, c, request{
		method: http.MethodGet,
		route:  "comments/product/{productId}",
		path:   fmt.Sprintf("comments/product/%d", productID),
	})
}

// CreateComment posts a comment; the author is taken from the token
func (c *Client) CreateComment(ctx context.Context, req domain.CommentRequest) (*domain.Comment, error) {
	cm, err := call[domain.Comment](ctx, c, request{
		method: http.MethodPost,
		route:  "comments",
		path:   "comments",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// DeleteComment removes a comment owned by the current user
func (c *Client) DeleteComment(ctx context.Context, commentID int64) (*domain.SuccessResponse, error) {
	resp, err := call[domain.SuccessResponse](ctx, c, request{
		method: http.MethodDelete,
		route:  "comments/{id}",
		path:   fmt.Sprintf("comments/%d", commentID),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUserRatings returns the ratings userID received
func (c *Client) GetUserRatings(ctx context.Context, userID int64) (*domain.RatingStats, error) {
	stats, err := call[domain.RatingStats](ctx, c, request{
		method: http.MethodGet,
		route:  "api/ratings/user/{userId}",
		path:   fmt.Sprintf("api/ratings/user/%d", userID),
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CreateRating rates a seller
func (c *Client) CreateRating(ctx context.Context, req domain.RatingRequest) (*domain.Rating, error) {
	r, err := call[domain.Rating](ctx, c, request{
		method: http.MethodPost,
		route:  "api/ratings",
		path:   "api/ratings",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HasRatedUser reports whether the current user already rated userID
func (c *Client) HasRatedUser(ctx context.Context, userID int64) (bool, error) {
	return callFlag(ctx, c, request{
		method: http.MethodGet,
		route:  "api/ratings/check/{userId}",
		path:   fmt.Sprintf("api/ratings/check/%d", userID),
	}, "hasRated")
}
