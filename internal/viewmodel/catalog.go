package viewmodel

import (
	"context"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/viewstate"
	"github.com/tair/voltmarket/pkg/logger"
)

const (
	opProducts    = "products"
	opCategories  = "categories"
	opDetail      = "detail"
	opFavorite    = "favorite"
	opLikes       = "likes"
	opToggleLike  = "toggle-like"
	opCreate      = "create"
	opUpload      = "upload"
	opComments    = "comments"
	opPostComment = "post-comment"
)

// CatalogState is what the catalog, product detail and product form screens render
type CatalogState struct {
	IsLoading  bool
	Products   []domain.Product
	Categories []domain.Category
	// Filter is the query the displayed products were requested with
	Filter domain.Filter

	SelectedProduct   *domain.Product
	IsLoadingDetail   bool
	IsFavorite        bool
	IsLoadingFavorite bool
	Likes             domain.LikesResponse
	IsTogglingLike    bool

	Comments          []domain.Comment
	IsLoadingComments bool
	IsPostingComment  bool
	IsCommentValid    bool

	FormErrors       ProductFormErrors
	UploadedImageURL string

	Error          string
	SuccessMessage string
}

// CatalogController drives the product list, product detail and product form
type CatalogController struct {
	api      CatalogAPI
	identity Identity
	timing   Timing

	store    *viewstate.Store[CatalogState]
	tasks    *viewstate.Tasks
	debounce *viewstate.Debouncer
	flash    viewstate.Flash
	// background is the context debounced searches run under
	background context.Context
}

// NewCatalogController creates a catalog controller
func NewCatalogController(api CatalogAPI, identity Identity, timing Timing) *CatalogController {
	timing = timing.withDefaults()
	return &CatalogController{
		api:        api,
		identity:   identity,
		timing:     timing,
		store:      viewstate.NewStore(CatalogState{Products: []domain.Product{}, Categories: []domain.Category{}, IsCommentValid: true}),
		tasks:      viewstate.NewTasks(),
		debounce:   viewstate.NewDebouncer(timing.SearchDebounce),
		background: context.Background(),
	}
}

// State returns the current snapshot
func (c *CatalogController) State() CatalogState { return c.store.Get() }

// Subscribe streams snapshots until cancel is called
func (c *CatalogController) Subscribe(buffer int) (<-chan CatalogState, func()) {
	return c.store.Subscribe(buffer)
}

// LoadProducts replaces the product list with the unfiltered listing
func (c *CatalogController) LoadProducts(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "CatalogController.LoadProducts")
	defer span.End()

	return c.fetchProducts(ctx, domain.Filter{}, "Could not load products")
}

// SearchProducts replaces the product list with the active products matching
// text and category. Blank text with no category is the same as LoadProducts.
func (c *CatalogController) SearchProducts(ctx context.Context, text string, categoryID *int64) error {
	ctx, span := tracer.Start(ctx, "CatalogController.SearchProducts")
	defer span.End()

	filter := domain.Filter{Search: strings.TrimSpace(text), CategoryID: categoryID}
	if !filter.HasFilters() {
		return c.fetchProducts(ctx, domain.Filter{}, "Could not load products")
	}
	active := true
	filter.ActiveOnly = &active

	span.SetAttributes(attribute.String("search.query", filter.Search))
	return c.fetchProducts(ctx, filter, "Search failed")
}

// QueueSearch schedules a search once typing has been quiet for the debounce
// window. A newer keystroke replaces the pending search and drops the result of
// one already in flight.
func (c *CatalogController) QueueSearch(text string, categoryID *int64) {
	c.tasks.Cancel(opProducts)
	c.debounce.Trigger(func() {
		_ = c.SearchProducts(c.background, text, categoryID)
	})
}

func (c *CatalogController) fetchProducts(ctx context.Context, filter domain.Filter, fallback string) error {
	ctx, ticket := c.tasks.Begin(ctx, opProducts)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	products, err := c.api.GetProducts(ctx, filter)
	if err != nil {
		applied := c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.IsLoading = false
			s.Error = errorMessage(err, fallback)
			return s
		})
		if !applied {
			return nil
		}
		logger.Warn(ctx).Err(err).Str("search", filter.Search).Msg("Failed to load products")
		return err
	}

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoading = false
		s.Products = products
		s.Filter = filter
		s.Error = ""
		return s
	})
	return nil
}

// LoadCategories refreshes the category list. It is best-effort: on failure the
// previous categories stay and no error is shown.
func (c *CatalogController) LoadCategories(ctx context.Context) {
	ctx, ticket := c.tasks.Begin(ctx, opCategories)
	defer ticket.Done()

	categories, err := c.api.GetCategories(ctx)
	if err != nil {
		logger.Debug(ctx).Err(err).Msg("Categories unavailable, keeping previous list")
		return
	}

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.Categories = categories
		return s
	})
}

// LoadProductDetail opens a product and then checks whether it is a favorite
func (c *CatalogController) LoadProductDetail(ctx context.Context, productID int64) error {
	ctx, span := tracer.Start(ctx, "CatalogController.LoadProductDetail")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	detailCtx, ticket := c.tasks.Begin(ctx, opDetail)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoadingDetail = true
		s.Error = ""
		return s
	})

	product, err := c.api.GetProduct(detailCtx, productID)
	if err != nil {
		applied := c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.IsLoadingDetail = false
			s.Error = errorMessage(err, "Could not load product")
			return s
		})
		if !applied {
			return nil
		}
		recordError(span, err)
		logger.Warn(ctx).Err(err).Int64("product_id", productID).Msg("Failed to load product")
		return err
	}

	applied := c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		if s.SelectedProduct == nil || s.SelectedProduct.ID != product.ID {
			s.IsFavorite = false
			s.Likes = domain.LikesResponse{}
			s.Comments = nil
		}
		s.IsLoadingDetail = false
		s.SelectedProduct = product
		return s
	})
	if !applied {
		return nil
	}

	return c.CheckFavoriteStatus(ctx, productID)
}

// CloseDetail leaves the product detail; results still in flight for it are dropped
func (c *CatalogController) CloseDetail() {
	for _, op := range []string{opDetail, opFavorite, opLikes, opToggleLike, opComments, opPostComment} {
		c.tasks.Cancel(op)
	}
	c.store.Update(func(s CatalogState) CatalogState {
		s.SelectedProduct = nil
		s.IsFavorite = false
		s.IsLoadingFavorite = false
		s.Likes = domain.LikesResponse{}
		s.IsTogglingLike = false
		s.Comments = nil
		s.IsLoadingComments = false
		s.IsPostingComment = false
		s.IsLoadingDetail = false
		return s
	})
}

// CheckFavoriteStatus asks whether productID is a favorite of the current user.
// Without a user the status stays "not favorite" and nothing is sent.
func (c *CatalogController) CheckFavoriteStatus(ctx context.Context, productID int64) error {
	userID, ok := c.identity.UserID()
	if !ok {
		return nil
	}

	ctx, ticket := c.tasks.Begin(ctx, opFavorite)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoadingFavorite = true
		return s
	})

	favorite, err := c.api.CheckFavorite(ctx, userID, productID)
	if err != nil {
		logger.Debug(ctx).Err(err).Int64("product_id", productID).Msg("Favorite status unavailable")
		favorite = false
	}

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsFavorite = favorite
		s.IsLoadingFavorite = false
		return s
	})
	return nil
}

// ToggleFavorite flips the favorite status optimistically and issues the matching
// add or remove. A failed call rolls the status back. A toggle arriving while
// another favorite call is in flight is ignored.
func (c *CatalogController) ToggleFavorite(ctx context.Context, productID int64) error {
	userID, ok := c.identity.UserID()
	if !ok {
		c.store.Update(func(s CatalogState) CatalogState {
			s.Error = "You must be logged in to manage favorites"
			return s
		})
		return domain.ErrNotAuthenticated
	}

	ctx, span := tracer.Start(ctx, "CatalogController.ToggleFavorite")
	defer span.End()

	var started, was bool
	c.store.Update(func(s CatalogState) CatalogState {
		if s.IsLoadingFavorite {
			return s
		}
		started = true
		was = s.IsFavorite
		s.IsFavorite = !was
		s.IsLoadingFavorite = true
		s.Error = ""
		return s
	})
	if !started {
		return nil
	}

	ctx, ticket := c.tasks.Begin(ctx, opFavorite)
	defer ticket.Done()

	var err error
	message := "Added to favorites"
	if was {
		_, err = c.api.RemoveFavorite(ctx, userID, productID)
		message = "Removed from favorites"
	} else {
		_, err = c.api.AddFavorite(ctx, userID, productID)
	}

	if err != nil {
		applied := c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.IsFavorite = was
			s.IsLoadingFavorite = false
			s.Error = errorMessage(err, "Could not update favorite")
			return s
		})
		if !applied {
			return nil
		}
		recordError(span, err)
		logger.Warn(ctx).Err(err).Int64("product_id", productID).Bool("was_favorite", was).Msg("Favorite toggle failed, rolled back")
		return err
	}

	if c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoadingFavorite = false
		s.SuccessMessage = message
		return s
	}) {
		c.flashSuccess(c.timing.MessageTTL)
	}
	return nil
}

// LoadLikes fetches the like summary of a product. It is best-effort.
func (c *CatalogController) LoadLikes(ctx context.Context, productID int64) {
	ctx, ticket := c.tasks.Begin(ctx, opLikes)
	defer ticket.Done()

	likes, err := c.api.GetProductLikes(ctx, productID)
	if err != nil {
		logger.Debug(ctx).Err(err).Int64("product_id", productID).Msg("Likes unavailable")
		return
	}

	// an in-flight toggle owns Likes until it settles
	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		if s.IsTogglingLike {
			return s
		}
		s.Likes = *likes
		return s
	})
}

// ToggleLike likes or unlikes a product optimistically, rolling back on failure
func (c *CatalogController) ToggleLike(ctx context.Context, productID int64) error {
	if _, ok := c.identity.UserID(); !ok {
		c.store.Update(func(s CatalogState) CatalogState {
			s.Error = "You must be logged in to like products"
			return s
		})
		return domain.ErrNotAuthenticated
	}

	var started bool
	var before domain.LikesResponse
	c.store.Update(func(s CatalogState) CatalogState {
		if s.IsTogglingLike {
			return s
		}
		started = true
		before = s.Likes
		after := domain.LikesResponse{IsLiked: !before.IsLiked, Count: before.Count + 1}
		if before.IsLiked {
			after.Count = max(before.Count-1, 0)
		}
		s.Likes = after
		s.IsTogglingLike = true
		s.Error = ""
		return s
	})
	if !started {
		return nil
	}

	ctx, ticket := c.tasks.Begin(ctx, opToggleLike)
	defer ticket.Done()

	var err error
	if before.IsLiked {
		_, err = c.api.RemoveLike(ctx, productID)
	} else {
		_, err = c.api.AddLike(ctx, productID)
	}

	if err != nil {
		applied := c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.Likes = before
			s.IsTogglingLike = false
			s.Error = errorMessage(err, "Could not update like")
			return s
		})
		if !applied {
			return nil
		}
		logger.Warn(ctx).Err(err).Int64("product_id", productID).Msg("Like toggle failed, rolled back")
		return err
	}

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsTogglingLike = false
		return s
	})
	return nil
}

// CreateProduct validates the draft, publishes it and reloads the product list.
// Invalid drafts only update FormErrors.
func (c *CatalogController) CreateProduct(ctx context.Context, draft ProductDraft) error {
	req, errs := draft.Request()
	c.store.Update(func(s CatalogState) CatalogState {
		s.FormErrors = formErrors(errs)
		return s
	})
	if err := errs.Err(); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "CatalogController.CreateProduct")
	defer span.End()

	createCtx, ticket := c.tasks.Begin(ctx, opCreate)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoading = true
		s.Error = ""
		s.SuccessMessage = ""
		return s
	})

	product, err := c.api.CreateProduct(createCtx, req)
	if err != nil {
		applied := c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.IsLoading = false
			s.Error = errorMessage(err, "Could not create product")
			return s
		})
		if !applied {
			return nil
		}
		recordError(span, err)
		logger.Warn(ctx).Err(err).Str("name", req.Name).Msg("Failed to create product")
		return err
	}

	if !c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoading = false
		s.SuccessMessage = "Product created successfully"
		s.UploadedImageURL = ""
		return s
	}) {
		return nil
	}
	c.flashSuccess(c.timing.CreatedTTL)

	logger.Info(ctx).Int64("product_id", product.ID).Msg("Product created")

	// the list reload failing does not undo the creation
	_ = c.LoadProducts(ctx)
	return nil
}

// UploadImage uploads a product picture and returns its public URL
func (c *CatalogController) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	ctx, ticket := c.tasks.Begin(ctx, opUpload)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoading = true
		s.Error = ""
		return s
	})

	url, err := c.api.UploadImage(ctx, filename, image)
	if err != nil {
		if c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.IsLoading = false
			s.Error = errorMessage(err, "Could not upload image")
			return s
		}) {
			logger.Warn(ctx).Err(err).Str("filename", filename).Msg("Image upload failed")
			return "", err
		}
		return "", nil
	}

	if c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoading = false
		s.UploadedImageURL = url
		s.SuccessMessage = "Image uploaded"
		return s
	}) {
		c.flashSuccess(c.timing.MessageTTL)
	}
	return url, nil
}

// LoadComments replaces the comments of a product
func (c *CatalogController) LoadComments(ctx context.Context, productID int64) error {
	ctx, ticket := c.tasks.Begin(ctx, opComments)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoadingComments = true
		return s
	})

	comments, err := c.api.GetComments(ctx, productID)
	if err != nil {
		if c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.IsLoadingComments = false
			s.Error = errorMessage(err, "Could not load comments")
			return s
		}) {
			logger.Warn(ctx).Err(err).Int64("product_id", productID).Msg("Failed to load comments")
			return err
		}
		return nil
	}

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsLoadingComments = false
		s.Comments = comments
		return s
	})
	return nil
}

// AddComment posts a comment and reloads the list from the server
func (c *CatalogController) AddComment(ctx context.Context, productID int64, content string) error {
	content = strings.TrimSpace(content)
	c.store.Update(func(s CatalogState) CatalogState {
		s.IsCommentValid = content != ""
		return s
	})
	if content == "" {
		var errs domain.ValidationErrors
		errs.Add("content", "Comment cannot be empty")
		return errs
	}

	postCtx, ticket := c.tasks.Begin(ctx, opPostComment)
	defer ticket.Done()

	c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsPostingComment = true
		s.Error = ""
		return s
	})

	_, err := c.api.CreateComment(postCtx, domain.CommentRequest{ProductID: productID, Content: content})
	if err != nil {
		if c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
			s.IsPostingComment = false
			s.Error = errorMessage(err, "Could not add comment")
			return s
		}) {
			logger.Warn(ctx).Err(err).Int64("product_id", productID).Msg("Failed to add comment")
			return err
		}
		return nil
	}

	if !c.store.UpdateIf(ticket.Current, func(s CatalogState) CatalogState {
		s.IsPostingComment = false
		s.SuccessMessage = "Comment added"
		return s
	}) {
		return nil
	}
	c.flashSuccess(c.timing.MessageTTL)

	return c.LoadComments(ctx, productID)
}

// ClearError dismisses the error message
func (c *CatalogController) ClearError() {
	c.store.Update(func(s CatalogState) CatalogState {
		s.Error = ""
		return s
	})
}

// ClearSuccessMessage dismisses the success message
func (c *CatalogController) ClearSuccessMessage() {
	c.flash.Stop()
	c.store.Update(func(s CatalogState) CatalogState {
		s.SuccessMessage = ""
		return s
	})
}

// ClearMessages dismisses both messages
func (c *CatalogController) ClearMessages() {
	c.flash.Stop()
	c.store.Update(func(s CatalogState) CatalogState {
		s.Error = ""
		s.SuccessMessage = ""
		return s
	})
}

// Close stops pending searches and timers and drops every result in flight
func (c *CatalogController) Close() {
	c.debounce.Stop()
	c.flash.Stop()
	c.tasks.Close()
}

func (c *CatalogController) flashSuccess(ttl time.Duration) {
	c.flash.Show(ttl, func() {
		c.store.Update(func(s CatalogState) CatalogState {
			s.SuccessMessage = ""
			return s
		})
	})
}
