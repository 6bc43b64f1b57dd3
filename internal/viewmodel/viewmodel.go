// Package viewmodel implements the per-screen controllers. Each controller owns a
// viewstate.Store, exposes intent methods that block on their network calls, and
// converts failures into one human-readable error string.
package viewmodel

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/voltmarket/internal/api"
	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/session"
)

var tracer = otel.Tracer("voltmarket/viewmodel")

// AuthAPI is the part of the backend the auth screens use
type AuthAPI interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error)
}

// CatalogAPI is the part of the backend the catalog and product screens use
type CatalogAPI interface {
	GetProducts(ctx context.Context, filter domain.Filter) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
	CreateProduct(ctx context.Context, req domain.ProductRequest) (*domain.Product, error)
	UploadImage(ctx context.Context, filename string, image io.Reader) (string, error)
	CheckFavorite(ctx context.Context, userID, productID int64) (bool, error)
	AddFavorite(ctx context.Context, userID, productID int64) (*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, productID int64) (*domain.SuccessResponse, error)
	GetProductLikes(ctx context.Context, productID int64) (*domain.LikesResponse, error)
	AddLike(ctx context.Context, productID int64) (*domain.Like, error)
	RemoveLike(ctx context.Context, productID int64) (*domain.SuccessResponse, error)
	GetComments(ctx context.Context, productID int64) ([]domain.Comment, error)
	CreateComment(ctx context.Context, req domain.CommentRequest) (*domain.Comment, error)
}

// FavoritesAPI is the part of the backend the favorites screen uses
type FavoritesAPI interface {
	GetFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error)
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	RemoveFavorite(ctx context.Context, userID, productID int64) (*domain.SuccessResponse, error)
}

// MyProductsAPI is the part of the backend the "my products" screen uses
type MyProductsAPI interface {
	GetProductsByUser(ctx context.Context, userID int64) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, productID int64) (*domain.SuccessResponse, error)
}

// ProfileAPI is the part of the backend the profile screen uses
type ProfileAPI interface {
	GetFavorites(ctx context.Context, userID int64) ([]domain.Favorite, error)
	GetProductsByUser(ctx context.Context, userID int64) ([]domain.Product, error)
	GetUserRatings(ctx context.Context, userID int64) (*domain.RatingStats, error)
}

// Identity gives read access to the current user
type Identity interface {
	UserID() (int64, bool)
	Current() session.Session
}

// SessionWriter installs a new session after login or register
type SessionWriter interface {
	Save(ctx context.Context, s session.Session) error
}

// SessionManager is the full session authority used by the profile screen
type SessionManager interface {
	Identity
	Clear(ctx context.Context) error
}

// Timing holds the controller delays
type Timing struct {
	SearchDebounce time.Duration
	MessageTTL     time.Duration
	CreatedTTL     time.Duration
}

// DefaultTiming returns the delays used by the app
func DefaultTiming() Timing {
	return Timing{
		SearchDebounce: 500 * time.Millisecond,
		MessageTTL:     2 * time.Second,
		CreatedTTL:     1500 * time.Millisecond,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.SearchDebounce <= 0 {
		t.SearchDebounce = d.SearchDebounce
	}
	if t.MessageTTL <= 0 {
		t.MessageTTL = d.MessageTTL
	}
	if t.CreatedTTL <= 0 {
		t.CreatedTTL = d.CreatedTTL
	}
	return t
}

// errorMessage turns an intent failure into the text shown on screen.
// Structured server messages are shown as sent; anything else gets fallback.
func errorMessage(err error, fallback string) string {
	var netErr *api.NetworkError
	var transportErr *api.TransportError
	var decodeErr *api.DecodeError

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "You must be logged in"
	case errors.As(err, &netErr):
		return netErr.Message(fallback)
	case errors.As(err, &transportErr):
		return "Connection error, check your network and try again"
	case errors.As(err, &decodeErr):
		return "Unexpected response from server"
	default:
		return fallback
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
