package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"table-order-system/internal/logger"
	"table-order-system/internal/models"
)

// Store is the order persistence boundary.
type Store interface {
	GetStaff(ctx context.Context, id int) (*models.Staff, error)
	GetItem(ctx context.Context, id int) (*models.Item, error)
	GetSetMeal(ctx context.Context, id int) (*models.SetMeal, error)
	// CreateOrder persists the order and all its lines as one atomic unit.
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int, status models.OrderStatus, completed bool) error
}

// StatusNotifier publishes order status changes for downstream consumers.
type StatusNotifier interface {
	PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error
}

// Service is the order engine: submission with server-side pricing and the
// status state machine.
type Service struct {
	store    Store
	notifier StatusNotifier
	logger   *logger.Logger
}

// NewService creates a new order service. notifier may be nil when messaging
// is not configured.
func NewService(store Store, notifier StatusNotifier, log *logger.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: log}
}

// Submit validates the cart, snapshots catalog prices into order lines, and
// persists the order atomically. An empty cart yields a zero-total order.
func (s *Service) Submit(ctx context.Context, req *models.SubmitOrderRequest, requestID string) (*models.SubmitOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	staff, err := s.store.GetStaff(ctx, req.StaffID)
	if err != nil {
		return nil, fmt.Errorf("resolve staff %d: %w", req.StaffID, err)
	}

	order := &models.Order{
		OrderNumber:   generateOrderNumber(),
		TableNumber:   req.TableNumber,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentUnpaid,
		StaffID:       staff.ID,
		TotalAmount:   decimal.Zero,
		ActualAmount:  decimal.Zero,
	}

	for i, line := range req.Items {
		price, err := s.resolvePrice(ctx, line, i)
		if err != nil {
			return nil, err
		}

		order.Lines = append(order.Lines, models.OrderLine{
			Ref:           models.LineRef{Type: line.Type, ID: line.ID},
			Quantity:      line.Quantity,
			OriginalPrice: price,
			ActualPrice:   price,
		})
		order.TotalAmount = order.TotalAmount.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	order.ActualAmount = order.TotalAmount

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.logger.Info("order_submitted", "Order submitted", requestID, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"table_number": order.TableNumber,
		"total_amount": order.TotalAmount.String(),
		"line_count":   len(order.Lines),
	})

	return &models.SubmitOrderResponse{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
	}, nil
}

// resolvePrice looks a cart line up in the catalog. Prices always come from
// the catalog at submission time, never from the client.
func (s *Service) resolvePrice(ctx context.Context, line models.CartLine, index int) (decimal.Decimal, error) {
	prefix := fmt.Sprintf("items[%d]", index)

	switch line.Type {
	case models.RefItem:
		item, err := s.store.GetItem(ctx, line.ID)
		if err != nil {
			return decimal.Zero, err
		}
		if !item.IsAvailable {
			return decimal.Zero, models.ValidationError{Field: prefix, Message: fmt.Sprintf("item %q is not available", item.Name)}
		}
		return item.Price, nil
	case models.RefSetMeal:
		meal, err := s.store.GetSetMeal(ctx, line.ID)
		if err != nil {
			return decimal.Zero, err
		}
		if !meal.IsAvailable {
			return decimal.Zero, models.ValidationError{Field: prefix, Message: fmt.Sprintf("set meal %q is not available", meal.Name)}
		}
		return meal.Price, nil
	default:
		return decimal.Zero, models.ValidationError{Field: prefix + ".type", Message: "type must be item or set_meal"}
	}
}

// UpdateStatus moves an order through the status state machine. Re-applying
// the current status is an accepted no-op; completion stamps completed_at.
func (s *Service) UpdateStatus(ctx context.Context, orderID int, rawStatus, requestID string) error {
	newStatus, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		return err
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if !models.CanTransition(order.Status, newStatus) {
		return models.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", order.Status, newStatus),
		}
	}

	if err := s.store.UpdateStatus(ctx, orderID, newStatus, newStatus == models.StatusCompleted); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.logger.Info("order_status_updated", "Order status updated", requestID, map[string]interface{}{
		"order_id":   orderID,
		"old_status": string(order.Status),
		"new_status": string(newStatus),
	})

	if s.notifier != nil && newStatus != order.Status {
		msg := models.NewStatusUpdateMessage(order.OrderNumber, order.Status, newStatus, "order-service")
		if err := s.notifier.PublishStatusUpdate(ctx, msg); err != nil {
			// The DB is the source of truth; a lost notification is logged,
			// not surfaced to the caller.
			s.logger.Error("status_publish_failed", "Failed to publish status update", requestID, err, map[string]interface{}{
				"order_number": order.OrderNumber,
			})
		}
	}

	return nil
}

// GetOrder returns an order with its lines and resolved display names.
func (s *Service) GetOrder(ctx context.Context, orderID int) (*models.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// generateOrderNumber returns a human-readable, time-ordered identifier. The
// random suffix keeps two submissions within the same second from colliding.
func generateOrderNumber() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return fmt.Sprintf("ORD_%s_%s", time.Now().UTC().Format("20060102150405"), suffix)
}
