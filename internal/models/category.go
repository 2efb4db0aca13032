package models

import (
	"strings"
	"time"
)

// Category is a menu category. SortOrder values across all categories always
// form the dense sequence 1..N with no gaps or duplicates.
type Category struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// AddCategoryRequest is the body of POST /categories.
type AddCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the add-category request.
func (req *AddCategoryRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return ValidationError{Field: "name", Message: "category name is required"}
	}
	if len(req.Name) > 50 {
		return ValidationError{Field: "name", Message: "category name must not exceed 50 characters"}
	}
	return nil
}

// EditCategoryRequest is the body of POST /categories/{id}/edit. SortOrder is
// optional; nil leaves the category's position unchanged.
type EditCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order,omitempty"`
}

// Validate checks the edit-category request.
func (req *EditCategoryRequest) Validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return ValidationError{Field: "name", Message: "category name is required"}
	}
	if len(req.Name) > 50 {
		return ValidationError{Field: "name", Message: "category name must not exceed 50 characters"}
	}
	return nil
}

// SortOrderUpdate is one entry of a bulk reorder request.
type SortOrderUpdate struct {
	ID        int `json:"id"`
	SortOrder int `json:"sort_order"`
}

// ReorderRequest is the body of POST /categories/reorder.
type ReorderRequest struct {
	Updates []SortOrderUpdate `json:"updates"`
}

// Validate checks the bulk reorder request for shape only; whether the updates
// form a contiguous permutation is checked against the stored categories.
func (req *ReorderRequest) Validate() error {
	if len(req.Updates) == 0 {
		return ValidationError{Field: "updates", Message: "updates cannot be empty"}
	}
	seen := make(map[int]bool, len(req.Updates))
	for _, u := range req.Updates {
		if seen[u.ID] {
			return ValidationError{Field: "updates", Message: "duplicate category id in updates"}
		}
		seen[u.ID] = true
	}
	return nil
}
