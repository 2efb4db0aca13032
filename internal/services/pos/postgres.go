package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"table-order-system/internal/database"
	"table-order-system/internal/models"
)

// PostgresStore implements Store on top of the shared connection pool.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a POS store backed by PostgreSQL.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetOrderByNumber returns an order with its lines, or models.ErrNotFound.
func (s *PostgresStore) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	err := s.db.QueryRow(ctx, database.SelectOrderByNumberSQL, number).Scan(
		&o.ID, &o.OrderNumber, &o.TableNumber, &o.Status, &o.PaymentStatus,
		&o.TotalAmount, &o.ActualAmount, &o.StaffID, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
		&o.PosSerial, &o.PosStatus, &o.PaymentMethod, &o.PaymentTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", number, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, database.SelectOrderLinesSQL, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line      models.OrderLine
			itemID    *int
			setMealID *int
		)
		err := rows.Scan(&line.ID, &line.OrderID, &itemID, &setMealID, &line.Quantity,
			&line.OriginalPrice, &line.ActualPrice, &line.Ref.Type, &line.CreatedAt,
			&line.DisplayName)
		if err != nil {
			return nil, err
		}
		switch {
		case line.Ref.Type == models.RefItem && itemID != nil:
			line.Ref.ID = *itemID
		case line.Ref.Type == models.RefSetMeal && setMealID != nil:
			line.Ref.ID = *setMealID
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// ApplyPayment records POS payment details; when markPaid is set the order is
// also flipped to paid and completed in the same transaction.
func (s *PostgresStore) ApplyPayment(ctx context.Context, orderID int, serial, status, method string, when time.Time, markPaid bool) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, database.ApplyPosPaymentSQL, serial, status, method, when, orderID); err != nil {
			return err
		}
		if markPaid {
			if _, err := tx.Exec(ctx, database.MarkOrderPaidSQL, models.PaymentPaid, models.StatusCompleted, orderID); err != nil {
				return err
			}
		}
		return nil
	})
}
