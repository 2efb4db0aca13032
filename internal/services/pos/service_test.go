package pos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"table-order-system/internal/logger"
	"table-order-system/internal/models"
)

type memPosStore struct {
	orders map[string]*models.Order
}

func (m *memPosStore) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	o, ok := m.orders[number]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", number, models.ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (m *memPosStore) ApplyPayment(ctx context.Context, orderID int, serial, status, method string, when time.Time, markPaid bool) error {
	for _, o := range m.orders {
		if o.ID != orderID {
			continue
		}
		o.PosSerial = &serial
		o.PosStatus = &status
		o.PaymentMethod = &method
		o.PaymentTime = &when
		if markPaid {
			o.PaymentStatus = models.PaymentPaid
			o.Status = models.StatusCompleted
			o.CompletedAt = &when
		}
		return nil
	}
	return models.ErrNotFound
}

func newBridge(t *testing.T, enabled bool) (*Service, *memPosStore) {
	t.Helper()
	store := &memPosStore{orders: map[string]*models.Order{
		"ORD_20260831120000_ab12": {
			ID:            1,
			OrderNumber:   "ORD_20260831120000_ab12",
			TableNumber:   "T3",
			Status:        models.StatusPending,
			PaymentStatus: models.PaymentUnpaid,
			TotalAmount:   decimal.NewFromFloat(55.00),
			ActualAmount:  decimal.NewFromFloat(55.00),
			Lines: []models.OrderLine{
				{
					Ref:           models.LineRef{Type: models.RefItem, ID: 7},
					DisplayName:   "Fried Rice",
					Quantity:      2,
					OriginalPrice: decimal.NewFromFloat(12.50),
					ActualPrice:   decimal.NewFromFloat(12.50),
				},
				{
					Ref:           models.LineRef{Type: models.RefSetMeal, ID: 3},
					DisplayName:   "Lunch Set",
					Quantity:      1,
					OriginalPrice: decimal.NewFromFloat(30.00),
					ActualPrice:   decimal.NewFromFloat(30.00),
				},
			},
		},
	}}
	return NewService(store, enabled, logger.New("pos-test")), store
}

func paidCallback() *models.PaymentNotification {
	return &models.PaymentNotification{
		OrderNo:       "ORD_20260831120000_ab12",
		SerialNo:      "SN-1001",
		Status:        "paid",
		PaymentMethod: "card",
	}
}

func TestExport_DisabledBridgeRejected(t *testing.T) {
	svc, _ := newBridge(t, false)

	_, err := svc.Export(context.Background(), "ORD_20260831120000_ab12")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFeatureDisabled))
}

func TestExport_FlattensOrder(t *testing.T) {
	svc, _ := newBridge(t, true)

	out, err := svc.Export(context.Background(), "ORD_20260831120000_ab12")
	require.NoError(t, err)

	assert.Equal(t, "ORD_20260831120000_ab12", out.OrderNo)
	assert.Equal(t, "T3", out.TableNo)
	assert.True(t, out.Amount.Equal(decimal.NewFromFloat(55.00)))
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Fried Rice", out.Items[0].Name)
	assert.True(t, out.Items[0].Subtotal.Equal(decimal.NewFromFloat(25.00)))
	assert.Equal(t, "Lunch Set", out.Items[1].Name)
	assert.True(t, out.Items[1].Subtotal.Equal(decimal.NewFromFloat(30.00)))
}

func TestExport_UnknownOrder(t *testing.T) {
	svc, _ := newBridge(t, true)

	_, err := svc.Export(context.Background(), "ORD_NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestImportPayment_DisabledBridgeRejected(t *testing.T) {
	svc, _ := newBridge(t, false)

	err := svc.ImportPayment(context.Background(), paidCallback(), "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFeatureDisabled))
}

func TestImportPayment_PaidCallbackCompletesOrder(t *testing.T) {
	svc, store := newBridge(t, true)

	require.NoError(t, svc.ImportPayment(context.Background(), paidCallback(), "test"))

	o := store.orders["ORD_20260831120000_ab12"]
	assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, models.StatusCompleted, o.Status)
	require.NotNil(t, o.PosSerial)
	assert.Equal(t, "SN-1001", *o.PosSerial)
	assert.NotNil(t, o.CompletedAt)
}

func TestImportPayment_RedeliveryIsIdempotent(t *testing.T) {
	svc, store := newBridge(t, true)

	require.NoError(t, svc.ImportPayment(context.Background(), paidCallback(), "test"))
	firstPaidAt := store.orders["ORD_20260831120000_ab12"].PaymentTime

	require.NoError(t, svc.ImportPayment(context.Background(), paidCallback(), "test"))
	assert.Equal(t, firstPaidAt, store.orders["ORD_20260831120000_ab12"].PaymentTime)
}

func TestImportPayment_DifferentSerialAfterPaidRejected(t *testing.T) {
	svc, _ := newBridge(t, true)

	require.NoError(t, svc.ImportPayment(context.Background(), paidCallback(), "test"))

	stale := paidCallback()
	stale.SerialNo = "SN-2002"
	err := svc.ImportPayment(context.Background(), stale, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStaleCallback))
}

func TestImportPayment_NonPaidStatusRecordsWithoutCompleting(t *testing.T) {
	svc, store := newBridge(t, true)

	n := paidCallback()
	n.Status = "pending"
	require.NoError(t, svc.ImportPayment(context.Background(), n, "test"))

	o := store.orders["ORD_20260831120000_ab12"]
	assert.Equal(t, models.PaymentUnpaid, o.PaymentStatus)
	assert.Equal(t, models.StatusPending, o.Status)
	require.NotNil(t, o.PosStatus)
	assert.Equal(t, "pending", *o.PosStatus)
}

func TestImportPayment_UnknownOrder(t *testing.T) {
	svc, _ := newBridge(t, true)

	n := paidCallback()
	n.OrderNo = "ORD_NOPE"
	err := svc.ImportPayment(context.Background(), n, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestImportPayment_MissingFieldsRejected(t *testing.T) {
	svc, _ := newBridge(t, true)

	tests := []struct {
		name   string
		mutate func(*models.PaymentNotification)
	}{
		{"missing order number", func(n *models.PaymentNotification) { n.OrderNo = "" }},
		{"missing serial", func(n *models.PaymentNotification) { n.SerialNo = "" }},
		{"missing status", func(n *models.PaymentNotification) { n.Status = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := paidCallback()
			tt.mutate(n)
			err := svc.ImportPayment(context.Background(), n, "test")
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
		})
	}
}
