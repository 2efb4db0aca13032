package models

import "github.com/shopspring/decimal"

// PosPaidStatus is the vendor status value that confirms payment.
const PosPaidStatus = "paid"

// PosLine is one line of the flat record a cash register consumes.
type PosLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// PosOrder is the wire format exported to the cash register.
type PosOrder struct {
	OrderNo string          `json:"orderNo"`
	TableNo string          `json:"tableNo"`
	Amount  decimal.Decimal `json:"amount"`
	Items   []PosLine       `json:"items"`
}

// PaymentNotification is the cash register's payment callback body.
type PaymentNotification struct {
	OrderNo       string `json:"orderNo"`
	SerialNo      string `json:"serialNo"`
	Status        string `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
}

// Validate checks the payment notification.
func (n *PaymentNotification) Validate() error {
	if n.OrderNo == "" {
		return ValidationError{Field: "orderNo", Message: "orderNo is required"}
	}
	if n.SerialNo == "" {
		return ValidationError{Field: "serialNo", Message: "serialNo is required"}
	}
	if n.Status == "" {
		return ValidationError{Field: "status", Message: "status is required"}
	}
	return nil
}
