package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tair/voltmarket/internal/domain"
)

// GetProducts lists products; unset filter fields are not sent
func (c *Client) GetProducts(ctx context.Context, filter domain.Filter) ([]domain.Product, error) {
	query := url.Values{}
	if filter.CategoryID != nil {
		query.Set("categoryId", strconv.FormatInt(*filter.CategoryID, 10))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		query.Set("q", q)
	}
	if filter.ActiveOnly != nil {
		query.Set("active", strconv.FormatBool(*filter.ActiveOnly))
	}

	return callList[domain.Product](ctx, c, request{
		method: http.MethodGet,
		route:  "products",
		path:   "products",
		query:  query,
	})
}

// GetProduct fetches one product
func (c *Client) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := call[domain.Product](ctx, c, request{
		method: http.MethodGet,
		route:  "products/{id}",
		path:   fmt.Sprintf("products/%d", productID),
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct publishes a new product
func (c *Client) CreateProduct(ctx context.Context, req domain.ProductRequest) (*domain.Product, error) {
	p, err := call[domain.Product](ctx, c, request{
		method: http.MethodPost,
		route:  "products",
		path:   "products",
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces a product
func (c *Client) UpdateProduct(ctx context.Context, productID int64, req domain.ProductRequest) (*domain.Product, error) {
	p, err := call[domain.Product](ctx, c, request{
		method: http.MethodPut,
		route:  "products/{id}",
		path:   fmt.Sprintf("products/%d", productID),
		body:   req,
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, productID int64) (*domain.SuccessResponse, error) {
	resp, err := call[domain.SuccessResponse](ctx, c, request{
		method: http.MethodDelete,
		route:  "products/{id}",
		path:   fmt.Sprintf("products/%d", productID),
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProductsByUser lists the products published by userID
func (c *Client) GetProductsByUser(ctx context.Context, userID int64) ([]domain.Product, error) {
	return callList[domain.Product](ctx, c, request{
		method: http.MethodGet,
		route:  "products/user/{userId}",
		path:   fmt.Sprintf("products/user/%d", userID),
	})
}

// GetCategories lists every category
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return callList[domain.Category](ctx, c, request{
		method: http.MethodGet,
		route:  "products/categories",
		path:   "products/categories",
	})
}

// GetCategory fetches one category
func (c *Client) GetCategory(ctx context.Context, categoryID int64) (*domain.Category, error) {
	cat, err := call[domain.Category](ctx, c, request{
		method: http.MethodGet,
		route:  "api/categories/{id}",
		path:   fmt.Sprintf("api/categories/%d", categoryID),
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}
