package viewmodel

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tair/voltmarket/internal/domain"
)

// local@domain, the domain needing at least one dot-separated label
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`)

const minPasswordLength = 6

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func isValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLength
}

// ProductDraft is the product form as typed by the user
type ProductDraft struct {
	Name        string
	Description string
	Price       string
	Stock       string
	Brand       string
	ImageURL    string
	SKU         string
	CategoryID  *int64
	Active      bool
}

// ProductFormErrors holds one message per invalid field; "" means valid
type ProductFormErrors struct {
	Name     string
	Price    string
	Stock    string
	Category string
}

// Valid reports whether no field has an error
func (e ProductFormErrors) Valid() bool {
	return e == ProductFormErrors{}
}

// Request validates the draft and builds the request body
func (d ProductDraft) Request() (domain.ProductRequest, domain.ValidationErrors) {
	var errs domain.ValidationErrors

	name := strings.TrimSpace(d.Name)
	if name == "" {
		errs.Add("name", "Name is required")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		errs.Add("price", "Price must be a positive number")
	}

	stock := 0
	if s := strings.TrimSpace(d.Stock); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			errs.Add("stock", "Stock must be a whole number")
		}
		stock = n
	}

	if d.CategoryID == nil {
		errs.Add("category", "Select a category")
	}

	if len(errs) > 0 {
		return domain.ProductRequest{}, errs
	}

	return domain.ProductRequest{
		Name:        name,
		Description: optional(d.Description),
		Price:       price,
		Stock:       stock,
		Brand:       optional(d.Brand),
		ImageURL:    optional(d.ImageURL),
		SKU:         optional(d.SKU),
		Active:      d.Active,
		CategoryID:  d.CategoryID,
	}, nil
}

func formErrors(errs domain.ValidationErrors) ProductFormErrors {
	return ProductFormErrors{
		Name:     errs.Field("name"),
		Price:    errs.Field("price"),
		Stock:    errs.Field("stock"),
		Category: errs.Field("category"),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
