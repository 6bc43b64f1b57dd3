package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Category groups products
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion"`
	Icon        *string `json:"icono"`
}

// Validate rejects categories without identity or name
func (c Category) Validate() error {
	if c.ID <= 0 {
		return errors.New("category id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category %d: name is required", c.ID)
	}
	return nil
}

// Filter narrows a product listing. The zero value applies no filter.
type Filter struct {
	CategoryID *int64
	Search     string
	ActiveOnly *bool
}

// HasFilters reports whether any field is set
func (f Filter) HasFilters() bool {
	return f.CategoryID != nil || strings.TrimSpace(f.Search) != "" || f.ActiveOnly != nil
}

// Clear returns the empty filter
func (f Filter) Clear() Filter {
	return Filter{}
}
