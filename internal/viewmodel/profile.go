package viewmodel

import (
	"context"
	"sync"

	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/viewstate"
	"github.com/tair/voltmarket/pkg/logger"
)

const (
	opStats  = "stats"
	opLogout = "logout"
)

// ProfileState is what the profile screen renders
type ProfileState struct {
	IsLoading      bool
	FullName       string
	Email          string
	FavoritesCount int
	ProductsCount  int
	// Ratings is nil when the rating summary could not be fetched
	Ratings *domain.RatingStats
	Error   string
}

// ProfileController drives the profile screen
type ProfileController struct {
	api      ProfileAPI
	sessions SessionManager
	store    *viewstate.Store[ProfileState]
	tasks    *viewstate.Tasks
}

// NewProfileController creates a profile controller
func NewProfileController(api ProfileAPI, sessions SessionManager) *ProfileController {
	return &ProfileController{
		api:      api,
		sessions: sessions,
		store:    viewstate.NewStore(ProfileState{}),
		tasks:    viewstate.NewTasks(),
	}
}

// State returns the current snapshot
func (c *ProfileController) State() ProfileState { return c.store.Get() }

// Subscribe streams snapshots until cancel is called
func (c *ProfileController) Subscribe(buffer int) (<-chan ProfileState, func()) {
	return c.store.Subscribe(buffer)
}

// LoadStats counts the user's favorites and products and fetches their ratings.
// The fetches run concurrently and each one degrades on failure: a count becomes
// zero and the ratings stay unknown. None of them fails the screen.
func (c *ProfileController) LoadStats(ctx context.Context) error {
	current := c.sessions.Current()
	userID, ok := c.sessions.UserID()
	if !ok {
		c.store.Update(func(s ProfileState) ProfileState {
			s.IsLoading = false
			s.Error = "User not authenticated"
			return s
		})
		return domain.ErrNotAuthenticated
	}

	ctx, span := tracer.Start(ctx, "ProfileController.LoadStats")
	defer span.End()

	ctx, ticket := c.tasks.Begin(ctx, opStats)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s ProfileState) ProfileState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	var (
		wg        sync.WaitGroup
		favorites int
		products  int
		ratings   *domain.RatingStats
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		list, err := c.api.GetFavorites(ctx, userID)
		if err != nil {
			logger.Debug(ctx).Err(err).Msg("Favorites count unavailable, showing 0")
			return
		}
		favorites = len(list)
	}()
	go func() {
		defer wg.Done()
		list, err := c.api.GetProductsByUser(ctx, userID)
		if err != nil {
			logger.Debug(ctx).Err(err).Msg("Products count unavailable, showing 0")
			return
		}
		products = len(list)
	}()
	go func() {
		defer wg.Done()
		stats, err := c.api.GetUserRatings(ctx, userID)
		if err != nil {
			logger.Debug(ctx).Err(err).Msg("Ratings unavailable")
			return
		}
		ratings = stats
	}()
	wg.Wait()

	c.store.UpdateIf(ticket.Current, func(s ProfileState) ProfileState {
		s.IsLoading = false
		s.FullName = domain.User{FirstName: current.FirstName, LastName: current.LastName}.FullName()
		s.Email = current.Email
		s.FavoritesCount = favorites
		s.ProductsCount = products
		s.Ratings = ratings
		return s
	})
	return nil
}

// Refresh reloads the stats
func (c *ProfileController) Refresh(ctx context.Context) error {
	return c.LoadStats(ctx)
}

// Logout clears the session, which also drops the API credential, then calls onLoggedOut
func (c *ProfileController) Logout(ctx context.Context, onLoggedOut func()) error {
	ctx, ticket := c.tasks.Begin(ctx, opLogout)
	defer ticket.Done()
	c.tasks.Cancel(opStats)

	if err := c.sessions.Clear(ctx); err != nil {
		logger.Error(ctx).Err(err).Msg("Failed to clear session")
		c.store.Update(func(s ProfileState) ProfileState {
			s.Error = "Could not log out"
			return s
		})
		return err
	}

	c.store.Update(func(ProfileState) ProfileState { return ProfileState{} })
	if onLoggedOut != nil {
		onLoggedOut()
	}
	return nil
}

// Close drops every result in flight
func (c *ProfileController) Close() { c.tasks.Close() }
