package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Product represents a marketplace listing as served by the backend
type Product struct {
	ID           int64   `json:"id"`
	Name         string  `json:"nombre"`
	Description  *string `json:"descripcion"`
	Price        float64 `json:"precio"`
	Stock        int     `json:"stock"`
	Brand        *string `json:"marca"`
	ImageURL     *string `json:"imageUrl"`
	SKU          *string `json:"sku"`
	Active       bool    `json:"activo"`
	CategoryID   *int64  `json:"catId"`
	CategoryName *string `json:"catNombre"`
}

// IsAvailable checks if product is active and in stock
func (p Product) IsAvailable() bool {
	return p.Active && p.Stock > 0
}

// FormattedPrice renders the price with thousands separators and no decimals
func (p Product) FormattedPrice() string {
	return "$" + groupThousands(strconv.FormatFloat(p.Price, 'f', 0, 64))
}

// Validate rejects payloads missing identity or carrying impossible values
func (p Product) Validate() error {
	if p.ID <= 0 {
		return errors.New("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %d: name is required", p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %d: price cannot be negative", p.ID)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %d: stock cannot be negative", p.ID)
	}
	return nil
}

// ProductRequest is the body for creating or updating a product
type ProductRequest struct {
	Name         string  `json:"nombre"`
	Description  *string `json:"descripcion"`
	Price        float64 `json:"precio"`
	Stock        int     `json:"stock"`
	Brand        *string `json:"marca"`
	ImageURL     *string `json:"imageUrl"`
	SKU          *string `json:"sku"` // nil lets the backend generate one
	Active       bool    `json:"activo"`
	CategoryID   *int64  `json:"categoryId"`
	CategoryName *string `json:"categoryNombre,omitempty"`
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
