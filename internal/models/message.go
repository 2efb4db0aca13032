package models

import "time"

// StatusUpdateMessage is published to the notifications fanout exchange
// whenever an order changes status.
type StatusUpdateMessage struct {
	OrderNumber string    `json:"order_number"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	ChangedBy   string    `json:"changed_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewStatusUpdateMessage builds a StatusUpdateMessage for an order status change.
func NewStatusUpdateMessage(orderNumber string, oldStatus, newStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderNumber: orderNumber,
		OldStatus:   string(oldStatus),
		NewStatus:   string(newStatus),
		ChangedBy:   changedBy,
		Timestamp:   time.Now().UTC(),
	}
}
