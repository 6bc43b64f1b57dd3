package domain

import (
	"fmt"
	"math"
	"strings"
)

// Rating is one user's score for a seller
type Rating struct {
	ID          int64   `json:"id"`
	RatedUserID int64   `json:"ratedUserId"`
	RaterUserID int64   `json:"raterUserId"`
	Score       int     `json:"puntuacion"`
	Comment     *string `json:"comentario"`
	CreatedAt   *string `json:"createdAt"`
	RaterUser   *User   `json:"raterUser,omitempty"`
}

// Validate rejects ratings outside 1-5
func (r Rating) Validate() error {
	if r.Score < 1 || r.Score > 5 {
		return fmt.Errorf("rating %d: score %d out of range", r.ID, r.Score)
	}
	return nil
}

// Stars renders the score as stars
func (r Rating) Stars() string {
	return strings.Repeat("★", r.Score)
}

// RatingRequest is the body for rating a seller
type RatingRequest struct {
	RatedUserID int64   `json:"ratedUserId"`
	Score       int     `json:"puntuacion"`
	Comment     *string `json:"comentario"`
}

// RatingStats aggregates the ratings a user received
type RatingStats struct {
	UserID        int64    `json:"userId"`
	AverageRating float64  `json:"averageRating"`
	TotalRatings  int      `json:"totalRatings"`
	Ratings       []Rating `json:"ratings"`
}

// Validate checks the aggregate and every rating in it
func (s RatingStats) Validate() error {
	if s.TotalRatings < 0 || s.AverageRating < 0 || s.AverageRating > 5 {
		return fmt.Errorf("rating stats for user %d are out of range", s.UserID)
	}
	for _, r := range s.Ratings {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AverageFormatted renders the average with one decimal
func (s RatingStats) AverageFormatted() string {
	return fmt.Sprintf("%.1f", s.AverageRating)
}

// FullStars is the integer part of the average
func (s RatingStats) FullStars() int {
	return int(math.Floor(s.AverageRating))
}

// HasHalfStar reports whether the fractional part reaches one half
func (s RatingStats) HasHalfStar() bool {
	return s.AverageRating-float64(s.FullStars()) >= 0.5
}

// Text renders the rating count for display
func (s RatingStats) Text() string {
	switch s.TotalRatings {
	case 0:
		return "No ratings"
	case 1:
		return "1 rating"
	default:
		return fmt.Sprintf("%d ratings", s.TotalRatings)
	}
}
