package pos

import (
	"context"
	"fmt"
	"time"

	"table-order-system/internal/logger"
	"table-order-system/internal/models"
)

// Store is the POS bridge persistence boundary.
type Store interface {
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	// ApplyPayment records the register's payment details on the order. When
	// markPaid is set it also flips payment status and completes the order,
	// all in one transaction.
	ApplyPayment(ctx context.Context, orderID int, serial, status, method string, when time.Time, markPaid bool) error
}

// Service is the bridge between the ordering system and an external cash
// register. Every operation is gated on the pos.enabled config flag.
type Service struct {
	store   Store
	enabled bool
	logger  *logger.Logger
}

// NewService creates a new POS bridge service.
func NewService(store Store, enabled bool, log *logger.Logger) *Service {
	return &Service{store: store, enabled: enabled, logger: log}
}

// Export returns the order in the flat wire format the register consumes.
func (s *Service) Export(ctx context.Context, orderNumber string) (*models.PosOrder, error) {
	if !s.enabled {
		return nil, models.ErrFeatureDisabled
	}

	order, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	out := &models.PosOrder{
		OrderNo: order.OrderNumber,
		TableNo: order.TableNumber,
		Amount:  order.ActualAmount,
		Items:   make([]models.PosLine, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		out.Items = append(out.Items, models.PosLine{
			Name:     line.DisplayName,
			Quantity: line.Quantity,
			Price:    line.ActualPrice,
			Subtotal: line.Subtotal(),
		})
	}
	return out, nil
}

// ImportPayment applies a payment callback from the register. Redelivery of
// the same serial is idempotent; a different serial after the order is paid
// is rejected as stale.
func (s *Service) ImportPayment(ctx context.Context, n *models.PaymentNotification, requestID string) error {
	if !s.enabled {
		return models.ErrFeatureDisabled
	}
	if err := n.Validate(); err != nil {
		return err
	}

	order, err := s.store.GetOrderByNumber(ctx, n.OrderNo)
	if err != nil {
		return err
	}

	if order.PaymentStatus == models.PaymentPaid {
		if order.PosSerial != nil && *order.PosSerial == n.SerialNo {
			s.logger.Info("pos_callback_redelivered", "Duplicate payment callback ignored", requestID, map[string]interface{}{
				"order_number": n.OrderNo,
				"serial_no":    n.SerialNo,
			})
			return nil
		}
		return fmt.Errorf("order %s already paid with serial %v: %w", n.OrderNo, order.PosSerial, models.ErrStaleCallback)
	}

	markPaid := n.Status == models.PosPaidStatus
	if err := s.store.ApplyPayment(ctx, order.ID, n.SerialNo, n.Status, n.PaymentMethod, time.Now().UTC(), markPaid); err != nil {
		return fmt.Errorf("apply payment: %w", err)
	}

	s.logger.Info("pos_payment_applied", "Payment callback applied", requestID, map[string]interface{}{
		"order_number":   n.OrderNo,
		"serial_no":      n.SerialNo,
		"pos_status":     n.Status,
		"payment_method": n.PaymentMethod,
		"completed":      markPaid,
	})
	return nil
}
