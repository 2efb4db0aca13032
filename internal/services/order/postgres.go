package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"table-order-system/internal/database"
	"table-order-system/internal/models"
)

// PostgresStore implements Store on top of the shared connection pool.
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates an order store backed by PostgreSQL.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetStaff returns a staff record or models.ErrNotFound.
func (s *PostgresStore) GetStaff(ctx context.Context, id int) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.QueryRow(ctx, database.SelectStaffSQL, id).Scan(&staff.ID, &staff.EmployeeID, &staff.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("staff %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// GetItem returns an item or models.ErrNotFound.
func (s *PostgresStore) GetItem(ctx context.Context, id int) (*models.Item, error) {
	var i models.Item
	err := s.db.QueryRow(ctx, database.SelectItemSQL, id).Scan(
		&i.ID, &i.Name, &i.CategoryID, &i.Price, &i.MemberPrice, &i.Description,
		&i.ImageURL, &i.StockQuantity, &i.IsAvailable, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetSetMeal returns a set-meal or models.ErrNotFound.
func (s *PostgresStore) GetSetMeal(ctx context.Context, id int) (*models.SetMeal, error) {
	var m models.SetMeal
	err := s.db.QueryRow(ctx, database.SelectSetMealSQL, id).Scan(
		&m.ID, &m.Name, &m.Price, &m.MemberPrice, &m.Description,
		&m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("set meal %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateOrder persists the order row and every line in one transaction.
// Partial persistence is never observable: any failure rolls everything back.
func (s *PostgresStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertOrderSQL,
			order.OrderNumber, order.TableNumber, order.Status, order.PaymentStatus,
			order.TotalAmount, order.ActualAmount, order.StaffID,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		for i := range order.Lines {
			line := &order.Lines[i]
			line.OrderID = order.ID

			var itemID, setMealID *int
			switch line.Ref.Type {
			case models.RefItem:
				itemID = &line.Ref.ID
			case models.RefSetMeal:
				setMealID = &line.Ref.ID
			}

			err := tx.QueryRow(ctx, database.InsertOrderLineSQL,
				order.ID, itemID, setMealID, line.Quantity,
				line.OriginalPrice, line.ActualPrice, line.Ref.Type,
			).Scan(&line.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOrder returns an order with its lines, or models.ErrNotFound.
func (s *PostgresStore) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	var o models.Order
	err := s.db.QueryRow(ctx, database.SelectOrderSQL, id).Scan(
		&o.ID, &o.OrderNumber, &o.TableNumber, &o.Status, &o.PaymentStatus,
		&o.TotalAmount, &o.ActualAmount, &o.StaffID, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
		&o.PosSerial, &o.PosStatus, &o.PaymentMethod, &o.PaymentTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	lines, err := s.loadLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (s *PostgresStore) loadLines(ctx context.Context, orderID int) ([]models.OrderLine, error) {
	rows, err := s.db.Query(ctx, database.SelectOrderLinesSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.OrderLine
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
		switch line.Ref.Type {
		case models.RefItem:
			if itemID != nil {
				line.Ref.ID = *itemID
			}
		case models.RefSetMeal:
			if setMealID != nil {
				line.Ref.ID = *setMealID
			}
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// UpdateStatus writes the new status; completion also stamps completed_at.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id int, status models.OrderStatus, completed bool) error {
	if completed {
		return s.db.Exec(ctx, database.UpdateOrderCompletedSQL, status, id)
	}
	return s.db.Exec(ctx, database.UpdateOrderStatusSQL, status, id)
}
