package viewmodel

import (
	"context"
	"time"

	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/viewstate"
	"github.com/tair/voltmarket/pkg/logger"
)

const (
	opMyProducts    = "my-products"
	opDeleteProduct = "delete-product"
)

// MyProductsState is what the "my products" screen renders
type MyProductsState struct {
	IsLoading      bool
	Products       []domain.Product
	Error          string
	SuccessMessage string
}

// MyProductsController lists and deletes the current user's products
type MyProductsController struct {
	api        MyProductsAPI
	identity   Identity
	messageTTL time.Duration

	store *viewstate.Store[MyProductsState]
	tasks *viewstate.Tasks
	flash viewstate.Flash
}

// NewMyProductsController creates a controller for the user's own listings
func NewMyProductsController(api MyProductsAPI, identity Identity, timing Timing) *MyProductsController {
	return &MyProductsController{
		api:        api,
		identity:   identity,
		messageTTL: timing.withDefaults().MessageTTL,
		store:      viewstate.NewStore(MyProductsState{Products: []domain.Product{}}),
		tasks:      viewstate.NewTasks(),
	}
}

// State returns the current snapshot
func (c *MyProductsController) State() MyProductsState { return c.store.Get() }

// Subscribe streams snapshots until cancel is called
func (c *MyProductsController) Subscribe(buffer int) (<-chan MyProductsState, func()) {
	return c.store.Subscribe(buffer)
}

// Load replaces the list with the products the current user published
func (c *MyProductsController) Load(ctx context.Context) error {
	userID, ok := c.identity.UserID()
	if !ok {
		c.store.Update(func(s MyProductsState) MyProductsState {
			s.Error = errorMessage(domain.ErrNotAuthenticated, "")
			return s
		})
		return domain.ErrNotAuthenticated
	}

	ctx, ticket := c.tasks.Begin(ctx, opMyProducts)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s MyProductsState) MyProductsState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	products, err := c.api.GetProductsByUser(ctx, userID)
	if err != nil {
		if c.store.UpdateIf(ticket.Current, func(s MyProductsState) MyProductsState {
			s.IsLoading = false
			s.Error = errorMessage(err, "Could not load your products")
			return s
		}) {
			logger.Warn(ctx).Err(err).Int64("user_id", userID).Msg("Failed to load user products")
			return err
		}
		return nil
	}

	c.store.UpdateIf(ticket.Current, func(s MyProductsState) MyProductsState {
		s.IsLoading = false
		s.Products = products
		return s
	})
	return nil
}

// Delete removes a product and reloads the list
func (c *MyProductsController) Delete(ctx context.Context, productID int64) error {
	ctx, span := tracer.Start(ctx, "MyProductsController.Delete")
	defer span.End()

	deleteCtx, ticket := c.tasks.Begin(ctx, opDeleteProduct)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s MyProductsState) MyProductsState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	if _, err := c.api.DeleteProduct(deleteCtx, productID); err != nil {
		if c.store.UpdateIf(ticket.Current, func(s MyProductsState) MyProductsState {
			s.IsLoading = false
			s.Error = errorMessage(err, "Could not delete product")
			return s
		}) {
			recordError(span, err)
			logger.Warn(ctx).Err(err).Int64("product_id", productID).Msg("Failed to delete product")
			return err
		}
		return nil
	}

	if !c.store.UpdateIf(ticket.Current, func(s MyProductsState) MyProductsState {
		s.SuccessMessage = "Product deleted"
		return s
	}) {
		return nil
	}
	c.flash.Show(c.messageTTL, func() {
		c.store.Update(func(s MyProductsState) MyProductsState {
			s.SuccessMessage = ""
			return s
		})
	})

	logger.Info(ctx).Int64("product_id", productID).Msg("Product deleted")
	return c.Load(ctx)
}

// Close drops every result in flight
func (c *MyProductsController) Close() {
	c.flash.Stop()
	c.tasks.Close()
}
