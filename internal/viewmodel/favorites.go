package viewmodel

import (
	"context"
	"sync"
	"time"

	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/viewstate"
	"github.com/tair/voltmarket/pkg/logger"
)

const (
	opFavorites      = "favorites"
	opRemoveFavorite = "remove-favorite"
)

// FavoritesState is what the favorites screen renders
type FavoritesState struct {
	IsLoading      bool
	Products       []domain.Product
	Error          string
	SuccessMessage string
}

// FavoritesController drives the favorites screen
type FavoritesController struct {
	api        FavoritesAPI
	identity   Identity
	messageTTL time.Duration

	store *viewstate.Store[FavoritesState]
	tasks *viewstate.Tasks
	flash viewstate.Flash
}

// NewFavoritesController creates a favorites controller
func NewFavoritesController(api FavoritesAPI, identity Identity, timing Timing) *FavoritesController {
	return &FavoritesController{
		api:        api,
		identity:   identity,
		messageTTL: timing.withDefaults().MessageTTL,
		store:      viewstate.NewStore(FavoritesState{Products: []domain.Product{}}),
		tasks:      viewstate.NewTasks(),
	}
}

// State returns the current snapshot
func (c *FavoritesController) State() FavoritesState { return c.store.Get() }

// Subscribe streams snapshots until cancel is called
func (c *FavoritesController) Subscribe(buffer int) (<-chan FavoritesState, func()) {
	return c.store.Subscribe(buffer)
}

// Load fetches the user's favorites and then each referenced product.
// A product that cannot be fetched is left out instead of failing the screen.
func (c *FavoritesController) Load(ctx context.Context) error {
	userID, ok := c.identity.UserID()
	if !ok {
		c.store.Update(func(s FavoritesState) FavoritesState {
			s.Error = errorMessage(domain.ErrNotAuthenticated, "")
			return s
		})
		return domain.ErrNotAuthenticated
	}

	ctx, span := tracer.Start(ctx, "FavoritesController.Load")
	defer span.End()

	ctx, ticket := c.tasks.Begin(ctx, opFavorites)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s FavoritesState) FavoritesState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	favorites, err := c.api.GetFavorites(ctx, userID)
	if err != nil {
		if c.store.UpdateIf(ticket.Current, func(s FavoritesState) FavoritesState {
			s.IsLoading = false
			s.Error = errorMessage(err, "Could not load favorites")
			return s
		}) {
			recordError(span, err)
			logger.Warn(ctx).Err(err).Int64("user_id", userID).Msg("Failed to load favorites")
			return err
		}
		return nil
	}

	products := c.resolveProducts(ctx, favorites)

	c.store.UpdateIf(ticket.Current, func(s FavoritesState) FavoritesState {
		s.IsLoading = false
		s.Products = products
		s.Error = ""
		return s
	})
	return nil
}

// resolveProducts fetches the products the favorites reference, keeping their order
func (c *FavoritesController) resolveProducts(ctx context.Context, favorites []domain.Favorite) []domain.Product {
	resolved := make([]*domain.Product, len(favorites))

	var wg sync.WaitGroup
	for i, fav := range favorites {
		if fav.Product != nil {
			resolved[i] = fav.Product
			continue
		}
		wg.Add(1)
		go func(i int, productID int64) {
			defer wg.Done()
			product, err := c.api.GetProduct(ctx, productID)
			if err != nil {
				logger.Debug(ctx).Err(err).Int64("product_id", productID).Msg("Dropping favorite whose product is unavailable")
				return
			}
			resolved[i] = product
		}(i, fav.ProductID)
	}
	wg.Wait()

	products := make([]domain.Product, 0, len(favorites))
	for _, p := range resolved {
		if p != nil {
			products = append(products, *p)
		}
	}
	return products
}

// Remove unsaves a product and drops it from the list
func (c *FavoritesController) Remove(ctx context.Context, productID int64) error {
	userID, ok := c.identity.UserID()
	if !ok {
		return domain.ErrNotAuthenticated
	}

	ctx, ticket := c.tasks.Begin(ctx, opRemoveFavorite)
	defer ticket.Done()

	if _, err := c.api.RemoveFavorite(ctx, userID, productID); err != nil {
		if c.store.UpdateIf(ticket.Current, func(s FavoritesState) FavoritesState {
			s.Error = errorMessage(err, "Could not remove favorite")
			return s
		}) {
			logger.Warn(ctx).Err(err).Int64("product_id", productID).Msg("Failed to remove favorite")
			return err
		}
		return nil
	}

	if c.store.UpdateIf(ticket.Current, func(s FavoritesState) FavoritesState {
		kept := make([]domain.Product, 0, len(s.Products))
		for _, p := range s.Products {
			if p.ID != productID {
				kept = append(kept, p)
			}
		}
		s.Products = kept
		s.SuccessMessage = "Removed from favorites"
		return s
	}) {
		c.flash.Show(c.messageTTL, func() {
			c.store.Update(func(s FavoritesState) FavoritesState {
				s.SuccessMessage = ""
				return s
			})
		})
	}
	return nil
}

// Close drops every result in flight
func (c *FavoritesController) Close() {
	c.flash.Stop()
	c.tasks.Close()
}
