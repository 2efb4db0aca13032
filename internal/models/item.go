package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a single dish on the menu, owned by exactly one category.
// StockQuantity of -1 means unlimited.
type Item struct {
	ID            int              `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	CategoryID    int              `json:"category_id" db:"category_id"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	MemberPrice   *decimal.Decimal `json:"member_price,omitempty" db:"member_price"`
	Description   string           `json:"description,omitempty" db:"description"`
	ImageURL      string           `json:"image_url,omitempty" db:"image_url"`
	StockQuantity int              `json:"stock_quantity" db:"stock_quantity"`
	IsAvailable   bool             `json:"is_available" db:"is_available"`
	CreatedAt     time.Time        `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at,omitempty" db:"updated_at"`
}

// SetMeal is a bundled combination of items priced independently of its
// constituents.
type SetMeal struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Price       decimal.Decimal  `json:"price" db:"price"`
	MemberPrice *decimal.Decimal `json:"member_price,omitempty" db:"member_price"`
	Description string           `json:"description,omitempty" db:"description"`
	IsAvailable bool             `json:"is_available" db:"is_available"`
	CreatedAt   time.Time        `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at,omitempty" db:"updated_at"`
}

// SetMealConstituent is a set-meal line joined with its item details, as
// served on the menu.
type SetMealConstituent struct {
	ItemID   int             `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// SaveItemRequest is the body of POST /items and POST /items/{id}/edit.
type SaveItemRequest struct {
	Name          string           `json:"name"`
	CategoryID    int              `json:"category_id"`
	Price         decimal.Decimal  `json:"price"`
	MemberPrice   *decimal.Decimal `json:"member_price,omitempty"`
	Description   string           `json:"description"`
	ImageURL      string           `json:"image_url"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
	IsAvailable   *bool            `json:"is_available,omitempty"`
}

// Validate checks the save-item request.
func (req *SaveItemRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return ValidationError{Field: "name", Message: "item name is required"}
	}
	if len(req.Name) > 100 {
		return ValidationError{Field: "name", Message: "item name must not exceed 100 characters"}
	}
	if req.CategoryID <= 0 {
		return ValidationError{Field: "category_id", Message: "category_id is required"}
	}
	if req.Price.IsNegative() {
		return ValidationError{Field: "price", Message: "price must not be negative"}
	}
	if req.MemberPrice != nil && req.MemberPrice.IsNegative() {
		return ValidationError{Field: "member_price", Message: "member_price must not be negative"}
	}
	return nil
}

// SetMealLine is one constituent of an add-set-meal request.
type SetMealLine struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// AddSetMealRequest is the body of POST /set-meals.
type AddSetMealRequest struct {
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	MemberPrice *decimal.Decimal `json:"member_price,omitempty"`
	Description string           `json:"description"`
	Items       []SetMealLine    `json:"items"`
}

// Validate checks the add-set-meal request.
func (req *AddSetMealRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return ValidationError{Field: "name", Message: "set meal name is required"}
	}
	if len(req.Name) > 50 {
		return ValidationError{Field: "name", Message: "set meal name must not exceed 50 characters"}
	}
	if req.Price.IsNegative() {
		return ValidationError{Field: "price", Message: "price must not be negative"}
	}
	if len(req.Items) == 0 {
		return ValidationError{Field: "items", Message: "a set meal needs at least one item"}
	}
	for i, line := range req.Items {
		if line.ItemID <= 0 {
			return ValidationError{Field: fmt.Sprintf("items[%d].item_id", i), Message: "item_id is required"}
		}
		if line.Quantity < 1 {
			return ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be at least 1"}
		}
	}
	return nil
}
