package viewmodel

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/tair/voltmarket/internal/api"
	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/session"
)

var errOffline = &api.TransportError{Method: http.MethodGet, Path: "products", Err: errors.New("connection refused")}

// serverError builds a response error; an empty message means an unstructured body
func serverError(status int, message string) error {
	ne := &api.NetworkError{Method: http.MethodPost, StatusCode: status}
	if message != "" {
		ne.Payload = &domain.ErrorResponse{Error: http.StatusText(status), Message: message}
	}
	return ne
}

// fakeAPI implements every backend port. Unset hooks answer with empty successes.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	login          func(domain.LoginRequest) (*domain.AuthResponse, error)
	register       func(domain.RegisterRequest) (*domain.AuthResponse, error)
	getProducts    func(context.Context, domain.Filter) ([]domain.Product, error)
	getProduct     func(int64) (*domain.Product, error)
	getCategories  func() ([]domain.Category, error)
	createProduct  func(domain.ProductRequest) (*domain.Product, error)
	uploadImage    func(string) (string, error)
	checkFavorite  func(int64, int64) (bool, error)
	addFavorite    func(int64, int64) error
	removeFavorite func(int64, int64) error
	getLikes       func(int64) (*domain.LikesResponse, error)
	addLike        func(int64) error
	removeLike     func(int64) error
	getComments    func(int64) ([]domain.Comment, error)
	createComment  func(domain.CommentRequest) error
	getFavorites   func(int64) ([]domain.Favorite, error)
	productsByUser func(int64) ([]domain.Product, error)
	deleteProduct  func(int64) error
	userRatings    func(int64) (*domain.RatingStats, error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) count(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	f.record("Login")
	if f.login != nil {
		return f.login(req)
	}
	return nil, errors.New("no login hook")
}

func (f *fakeAPI) Register(_ context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	f.record("Register")
	if f.register != nil {
		return f.register(req)
	}
	return nil, errors.New("no register hook")
}

func (f *fakeAPI) GetProducts(ctx context.Context, filter domain.Filter) ([]domain.Product, error) {
	f.record("GetProducts")
	if f.getProducts != nil {
		return f.getProducts(ctx, filter)
	}
	return []domain.Product{}, nil
}

func (f *fakeAPI) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	f.record("GetProduct")
	if f.getProduct != nil {
		return f.getProduct(productID)
	}
	return &domain.Product{ID: productID, Name: "Product", Price: 1}, nil
}

func (f *fakeAPI) GetCategories(context.Context) ([]domain.Category, error) {
	f.record("GetCategories")
	if f.getCategories != nil {
		return f.getCategories()
	}
	return []domain.Category{}, nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, req domain.ProductRequest) (*domain.Product, error) {
	f.record("CreateProduct")
	if f.createProduct != nil {
		return f.createProduct(req)
	}
	return &domain.Product{ID: 100, Name: req.Name, Price: req.Price}, nil
}

func (f *fakeAPI) UploadImage(_ context.Context, filename string, _ io.Reader) (string, error) {
	f.record("UploadImage")
	if f.uploadImage != nil {
		return f.uploadImage(filename)
	}
	return "/uploads/" + filename, nil
}

func (f *fakeAPI) CheckFavorite(_ context.Context, userID, productID int64) (bool, error) {
	f.record("CheckFavorite")
	if f.checkFavorite != nil {
		return f.checkFavorite(userID, productID)
	}
	return false, nil
}

func (f *fakeAPI) AddFavorite(_ context.Context, userID, productID int64) (*domain.Favorite, error) {
	f.record("AddFavorite")
	if f.addFavorite != nil {
		if err := f.addFavorite(userID, productID); err != nil {
			return nil, err
		}
	}
	return &domain.Favorite{ID: 1, UserID: userID, ProductID: productID}, nil
}

func (f *fakeAPI) RemoveFavorite(_ context.Context, userID, productID int64) (*domain.SuccessResponse, error) {
	f.record("RemoveFavorite")
	if f.removeFavorite != nil {
		if err := f.removeFavorite(userID, productID); err != nil {
			return nil, err
		}
	}
	return &domain.SuccessResponse{Success: true}, nil
}

func (f *fakeAPI) GetProductLikes(_ context.Context, productID int64) (*domain.LikesResponse, error) {
	f.record("GetProductLikes")
	if f.getLikes != nil {
		return f.getLikes(productID)
	}
	return &domain.LikesResponse{}, nil
}

func (f *fakeAPI) AddLike(_ context.Context, productID int64) (*domain.Like, error) {
	f.record("AddLike")
	if f.addLike != nil {
		if err := f.addLike(productID); err != nil {
			return nil, err
		}
	}
	return &domain.Like{ID: 1, ProductID: productID}, nil
}

func (f *fakeAPI) RemoveLike(_ context.Context, productID int64) (*domain.SuccessResponse, error) {
	f.record("RemoveLike")
	if f.removeLike != nil {
		if err := f.removeLike(productID); err != nil {
			return nil, err
		}
	}
	return &domain.SuccessResponse{Success: true}, nil
}

func (f *fakeAPI) GetComments(_ context.Context, productID int64) ([]domain.Comment, error) {
	f.record("GetComments")
	if f.getComments != nil {
		return f.getComments(productID)
	}
	return []domain.Comment{}, nil
}

func (f *fakeAPI) CreateComment(_ context.Context, req domain.CommentRequest) (*domain.Comment, error) {
	f.record("CreateComment")
	if f.createComment != nil {
		if err := f.createComment(req); err != nil {
			return nil, err
		}
	}
	return &domain.Comment{ID: 1, ProductID: req.ProductID, Content: req.Content}, nil
}

func (f *fakeAPI) GetFavorites(_ context.Context, userID int64) ([]domain.Favorite, error) {
	f.record("GetFavorites")
	if f.getFavorites != nil {
		return f.getFavorites(userID)
	}
	return []domain.Favorite{}, nil
}

func (f *fakeAPI) GetProductsByUser(_ context.Context, userID int64) ([]domain.Product, error) {
	f.record("GetProductsByUser")
	if f.productsByUser != nil {
		return f.productsByUser(userID)
	}
	return []domain.Product{}, nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, productID int64) (*domain.SuccessResponse, error) {
	f.record("DeleteProduct")
	if f.deleteProduct != nil {
		if err := f.deleteProduct(productID); err != nil {
			return nil, err
		}
	}
	return &domain.SuccessResponse{Success: true}, nil
}

func (f *fakeAPI) GetUserRatings(_ context.Context, userID int64) (*domain.RatingStats, error) {
	f.record("GetUserRatings")
	if f.userRatings != nil {
		return f.userRatings(userID)
	}
	return &domain.RatingStats{UserID: userID}, nil
}

// loggedIn returns a session manager holding a complete session for user 7
func loggedIn() *session.Manager {
	m := session.NewManager(session.NewMemoryStore())
	if err := m.Save(context.Background(), session.Session{Token: "tok", UserID: 7, Email: "ana@example.com", FirstName: "Ana", LastName: "Pérez"}); err != nil {
		panic(err)
	}
	return m
}

func loggedOut() *session.Manager {
	return session.NewManager(session.NewMemoryStore())
}

func product(id int64, name string) domain.Product {
	return domain.Product{ID: id, Name: name, Price: 10, Stock: 1, Active: true}
}
