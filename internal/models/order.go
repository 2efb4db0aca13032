package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// statusTransitions is the adjacency table of legal status changes.
// Re-applying the current status is always accepted as a no-op.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCompleted, StatusCancelled},
	StatusPreparing: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseOrderStatus validates a raw status string against the closed set.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch OrderStatus(raw) {
	case StatusPending, StatusPreparing, StatusCompleted, StatusCancelled:
		return OrderStatus(raw), nil
	default:
		return "", ValidationError{Field: "status", Message: "status must be one of: pending, preparing, completed, cancelled"}
	}
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LineRefType discriminates what an order line points at.
type LineRefType string

const (
	RefItem    LineRefType = "item"
	RefSetMeal LineRefType = "set_meal"
)

// LineRef is a tagged reference to either an item or a set-meal. Exactly one
// target is ever addressed; the type carries the discriminator.
type LineRef struct {
	Type LineRefType `json:"type"`
	ID   int         `json:"id"`
}

// Validate checks the reference is well formed.
func (r LineRef) Validate(index int) error {
	prefix := fmt.Sprintf("items[%d]", index)
	switch r.Type {
	case RefItem, RefSetMeal:
	default:
		return ValidationError{Field: prefix + ".type", Message: "type must be item or set_meal"}
	}
	if r.ID <= 0 {
		return ValidationError{Field: prefix + ".id", Message: "id is required"}
	}
	return nil
}

// OrderLine is one line of an order. Prices are a snapshot taken at
// submission time and never change afterwards.
type OrderLine struct {
	ID            int             `json:"id,omitempty" db:"id"`
	OrderID       int             `json:"order_id,omitempty" db:"order_id"`
	Ref           LineRef         `json:"ref"`
	DisplayName   string          `json:"name,omitempty"`
	Quantity      int             `json:"quantity" db:"quantity"`
	OriginalPrice decimal.Decimal `json:"original_price" db:"original_price"`
	ActualPrice   decimal.Decimal `json:"actual_price" db:"actual_price"`
	CreatedAt     time.Time       `json:"created_at,omitempty" db:"created_at"`
}

// Subtotal returns original price times quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.OriginalPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a submitted table order. Orders are append-only after submission:
// totals are computed once and line rows are immutable.
type Order struct {
	ID            int             `json:"id" db:"id"`
	OrderNumber   string          `json:"order_number" db:"order_number"`
	TableNumber   string          `json:"table_number" db:"table_number"`
	Status        OrderStatus     `json:"status" db:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	ActualAmount  decimal.Decimal `json:"actual_amount" db:"actual_amount"`
	StaffID       int             `json:"staff_id" db:"staff_id"`
	Lines         []OrderLine     `json:"items,omitempty"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty" db:"completed_at"`

	// Cash-register fields, populated only through the POS bridge.
	PosSerial     *string    `json:"pos_serial,omitempty" db:"pos_serial"`
	PosStatus     *string    `json:"pos_status,omitempty" db:"pos_status"`
	PaymentMethod *string    `json:"payment_method,omitempty" db:"payment_method"`
	PaymentTime   *time.Time `json:"payment_time,omitempty" db:"payment_time"`
}

// CartLine is one entry of a submitted cart.
type CartLine struct {
	ID       int         `json:"id"`
	Type     LineRefType `json:"type"`
	Quantity int         `json:"quantity"`
}

// SubmitOrderRequest is the body of POST /orders. Prices are resolved
// server-side from the catalog, never taken from the client.
type SubmitOrderRequest struct {
	TableNumber string     `json:"table_number"`
	StaffID     int        `json:"staff_id"`
	Items       []CartLine `json:"items"`
}

// Validate checks the submit-order request. An empty cart is accepted and
// produces a zero-total order.
func (req *SubmitOrderRequest) Validate() error {
	if req.TableNumber == "" {
		return ValidationError{Field: "table_number", Message: "table number is required"}
	}
	if len(req.TableNumber) > 10 {
		return ValidationError{Field: "table_number", Message: "table number must not exceed 10 characters"}
	}
	if req.StaffID <= 0 {
		return ValidationError{Field: "staff_id", Message: "staff_id is required"}
	}
	if len(req.Items) > 50 {
		return ValidationError{Field: "items", Message: "a maximum of 50 items is allowed"}
	}
	for i, line := range req.Items {
		if err := (LineRef{Type: line.Type, ID: line.ID}).Validate(i); err != nil {
			return err
		}
		if line.Quantity < 1 {
			return ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be at least 1"}
		}
	}
	return nil
}

// SubmitOrderResponse is the success body of POST /orders.
type SubmitOrderResponse struct {
	Success     bool            `json:"success"`
	OrderID     int             `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Status      OrderStatus     `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// UpdateStatusRequest is the body of POST /orders/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Staff is the minimal staff record the order engine needs: submissions must
// resolve to a registered staff member.
type Staff struct {
	ID         int    `json:"id" db:"id"`
	EmployeeID string `json:"employee_id" db:"employee_id"`
	Name       string `json:"name" db:"name"`
}
