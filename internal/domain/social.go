package domain

import (
	"errors"
	"fmt"
)

// Favorite links a user to a product they saved
type Favorite struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"userId"`
	ProductID int64    `json:"productId"`
	Product   *Product `json:"product,omitempty"`
}

// Validate rejects favorites without their references
func (f Favorite) Validate() error {
	if f.ID <= 0 || f.UserID <= 0 || f.ProductID <= 0 {
		return fmt.Errorf("favorite %d: id, userId and productId are required", f.ID)
	}
	return nil
}

// Like is a user's like on a product
type Like struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
}

// Validate rejects likes without their references
func (l Like) Validate() error {
	if l.ID <= 0 || l.ProductID <= 0 {
		return fmt.Errorf("like %d: id and productId are required", l.ID)
	}
	return nil
}

// LikeRequest is the body for liking a product
type LikeRequest struct {
	ProductID int64 `json:"productId"`
}

// LikesResponse summarizes likes on a product for the current user
type LikesResponse struct {
	Count   int  `json:"count"`
	IsLiked bool `json:"isLiked"`
}

// Validate rejects negative counts
func (l LikesResponse) Validate() error {
	if l.Count < 0 {
		return errors.New("likes count cannot be negative")
	}
	return nil
}

// Text renders the like count for display
func (l LikesResponse) Text() string {
	switch l.Count {
	case 0:
		return "No likes"
	case 1:
		return "1 like"
	default:
		return fmt.Sprintf("%d likes", l.Count)
	}
}

// Comment is a user comment on a product
type Comment struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"userId"`
	ProductID int64   `json:"productId"`
	Content   string  `json:"contenido"`
	CreatedAt *string `json:"createdAt"`
	User      *User   `json:"user,omitempty"`
}

// Validate rejects comments without identity
func (c Comment) Validate() error {
	if c.ID <= 0 || c.ProductID <= 0 {
		return fmt.Errorf("comment %d: id and productId are required", c.ID)
	}
	return nil
}

// TimeAgo returns the creation timestamp as sent by the backend
func (c Comment) TimeAgo() string {
	if c.CreatedAt == nil || *c.CreatedAt == "" {
		return "just now"
	}
	return *c.CreatedAt
}

// CommentRequest is the body for posting a comment; the author comes from the token
type CommentRequest struct {
	ProductID int64  `json:"productId"`
	Content   string `json:"contenido"`
}
