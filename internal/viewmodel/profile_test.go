package viewmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/voltmarket/internal/domain"
)

func threeFavorites(userID int64) ([]domain.Favorite, error) {
	return []domain.Favorite{
		{ID: 1, UserID: userID, ProductID: 10},
		{ID: 2, UserID: userID, ProductID: 11},
		{ID: 3, UserID: userID, ProductID: 12},
	}, nil
}

func TestProfileController_BestEffortAggregation(t *testing.T) {
	fake := &fakeAPI{
		getFavorites:   threeFavorites,
		productsByUser: func(int64) ([]domain.Product, error) { return nil, errOffline },
		userRatings:    func(int64) (*domain.RatingStats, error) { return nil, errOffline },
	}
	c := NewProfileController(fake, loggedIn())
	defer c.Close()

	require.NoError(t, c.LoadStats(context.Background()))

	state := c.State()
	assert.Equal(t, 3, state.FavoritesCount)
	assert.Equal(t, 0, state.ProductsCount)
	assert.Nil(t, state.Ratings)
	assert.Empty(t, state.Error)
	assert.False(t, state.IsLoading)
	assert.Equal(t, "Ana Pérez", state.FullName)
}

func TestProfileController_AllStats(t *testing.T) {
	fake := &fakeAPI{
		getFavorites: threeFavorites,
		productsByUser: func(int64) ([]domain.Product, error) {
			return []domain.Product{product(1, "A")}, nil
		},
		userRatings: func(userID int64) (*domain.RatingStats, error) {
			return &domain.RatingStats{UserID: userID, AverageRating: 4.5, TotalRatings: 2}, nil
		},
	}
	c := NewProfileController(fake, loggedIn())
	defer c.Close()

	require.NoError(t, c.Refresh(context.Background()))

	state := c.State()
	assert.Equal(t, 3, state.FavoritesCount)
	assert.Equal(t, 1, state.ProductsCount)
	require.NotNil(t, state.Ratings)
	assert.Equal(t, "4.5", state.Ratings.AverageFormatted())
}

func TestProfileController_NeedsUser(t *testing.T) {
	fake := &fakeAPI{}
	c := NewProfileController(fake, loggedOut())
	defer c.Close()

	err := c.LoadStats(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Equal(t, "User not authenticated", c.State().Error)
	assert.Empty(t, fake.Calls())
}

func TestProfileController_LogoutClearsCredential(t *testing.T) {
	sessions := loggedIn()
	c := NewProfileController(&fakeAPI{}, sessions)
	defer c.Close()

	called := false
	require.NoError(t, c.Logout(context.Background(), func() { called = true }))

	assert.True(t, called)
	assert.False(t, sessions.LoggedIn())
	assert.Empty(t, sessions.Token())
	assert.Equal(t, ProfileState{}, c.State())
}

func TestFavoritesController_FanOutOmitsFailures(t *testing.T) {
	fake := &fakeAPI{
		getFavorites: func(userID int64) ([]domain.Favorite, error) {
			embedded := product(13, "Embedded")
			favs, _ := threeFavorites(userID)
			return append(favs, domain.Favorite{ID: 4, UserID: userID, ProductID: 13, Product: &embedded}), nil
		},
		getProduct: func(id int64) (*domain.Product, error) {
			if id == 11 {
				return nil, serverError(404, "Product not found")
			}
			p := product(id, "P")
			return &p, nil
		},
	}
	c := NewFavoritesController(fake, loggedIn(), fastTiming())
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))

	state := c.State()
	assert.Empty(t, state.Error)
	require.Len(t, state.Products, 3)
	assert.Equal(t, int64(10), state.Products[0].ID)
	assert.Equal(t, int64(12), state.Products[1].ID)
	assert.Equal(t, int64(13), state.Products[2].ID)
	assert.Equal(t, 3, fake.count("GetProduct"), "embedded products are not refetched")
}

func TestFavoritesController_LoadFailureKeepsList(t *testing.T) {
	fail := false
	fake := &fakeAPI{getFavorites: func(userID int64) ([]domain.Favorite, error) {
		if fail {
			return nil, errOffline
		}
		return threeFavorites(userID)
	}}
	c := NewFavoritesController(fake, loggedIn(), fastTiming())
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))
	fail = true
	require.Error(t, c.Load(context.Background()))

	state := c.State()
	assert.Len(t, state.Products, 3)
	assert.NotEmpty(t, state.Error)
	assert.False(t, state.IsLoading)
}

func TestFavoritesController_Remove(t *testing.T) {
	fake := &fakeAPI{getFavorites: threeFavorites}
	c := NewFavoritesController(fake, loggedIn(), fastTiming())
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Remove(context.Background(), 11))

	state := c.State()
	require.Len(t, state.Products, 2)
	for _, p := range state.Products {
		assert.NotEqual(t, int64(11), p.ID)
	}
	assert.Equal(t, "Removed from favorites", state.SuccessMessage)
}

func TestMyProductsController_DeleteReloads(t *testing.T) {
	products := []domain.Product{product(1, "A"), product(2, "B")}
	fake := &fakeAPI{
		productsByUser: func(userID int64) ([]domain.Product, error) {
			assert.Equal(t, int64(7), userID)
			return products, nil
		},
		deleteProduct: func(id int64) error {
			products = products[:1]
			return nil
		},
	}
	c := NewMyProductsController(fake, loggedIn(), fastTiming())
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.State().Products, 2)

	require.NoError(t, c.Delete(context.Background(), 2))
	assert.Len(t, c.State().Products, 1)
	assert.Equal(t, []string{"GetProductsByUser", "DeleteProduct", "GetProductsByUser"}, fake.Calls())
}

func TestMyProductsController_DeleteFailure(t *testing.T) {
	fake := &fakeAPI{deleteProduct: func(int64) error { return serverError(403, "Not your product") }}
	c := NewMyProductsController(fake, loggedIn(), fastTiming())
	defer c.Close()

	err := c.Delete(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, "Not your product", c.State().Error)
	assert.False(t, c.State().IsLoading)
	assert.Equal(t, 0, fake.count("GetProductsByUser"))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "fallback", errorMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", errorMessage(serverError(500, ""), "fallback"))
	assert.Equal(t, "Bad price", errorMessage(serverError(400, "Bad price"), "fallback"))
	assert.Contains(t, errorMessage(errOffline, "fallback"), "Connection error")
	assert.Equal(t, "You must be logged in", errorMessage(domain.ErrNotAuthenticated, "fallback"))
}
