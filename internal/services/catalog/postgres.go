package catalog

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

// NewPostgresStore creates a catalog store backed by PostgreSQL.
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func scanCategory(row pgx.Row, c *models.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
}

func scanItem(row pgx.Row, i *models.Item) error {
	return row.Scan(&i.ID, &i.Name, &i.CategoryID, &i.Price, &i.MemberPrice, &i.Description,
		&i.ImageURL, &i.StockQuantity, &i.IsAvailable, &i.CreatedAt, &i.UpdatedAt)
}

func scanSetMeal(row pgx.Row, m *models.SetMeal) error {
	return row.Scan(&m.ID, &m.Name, &m.Price, &m.MemberPrice, &m.Description,
		&m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
}

// ListCategories returns all categories in display order.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.Query(ctx, database.SelectCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory returns one category or models.ErrNotFound.
func (s *PostgresStore) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := scanCategory(s.db.QueryRow(ctx, database.SelectCategorySQL, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAvailableItems returns every item currently on sale.
func (s *PostgresStore) ListAvailableItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.Query(ctx, database.SelectAvailableItemsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var i models.Item
		if err := scanItem(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// GetItem returns one item or models.ErrNotFound.
func (s *PostgresStore) GetItem(ctx context.Context, id int) (*models.Item, error) {
	var i models.Item
	err := scanItem(s.db.QueryRow(ctx, database.SelectItemSQL, id), &i)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// InsertItem persists a new item and fills in its generated fields.
func (s *PostgresStore) InsertItem(ctx context.Context, item *models.Item) error {
	return s.db.QueryRow(ctx, database.InsertItemSQL,
		item.Name, item.CategoryID, item.Price, item.MemberPrice, item.Description,
		item.ImageURL, item.StockQuantity, item.IsAvailable,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

// UpdateItem overwrites an existing item.
func (s *PostgresStore) UpdateItem(ctx context.Context, item *models.Item) error {
	return s.db.Exec(ctx, database.UpdateItemSQL,
		item.Name, item.CategoryID, item.Price, item.MemberPrice, item.Description,
		item.ImageURL, item.StockQuantity, item.IsAvailable, item.ID)
}

// DeleteItem removes an item row. Order lines keep their snapshot.
func (s *PostgresStore) DeleteItem(ctx context.Context, id int) error {
	return s.db.Exec(ctx, database.DeleteItemSQL, id)
}

// CountSetMealsUsingItem counts set-meal lines referencing the item.
func (s *PostgresStore) CountSetMealsUsingItem(ctx context.Context, itemID int) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, database.CountSetMealsUsingItemSQL, itemID).Scan(&count)
	return count, err
}

// ListAvailableSetMeals returns every set-meal currently on sale.
func (s *PostgresStore) ListAvailableSetMeals(ctx context.Context) ([]models.SetMeal, error) {
	rows, err := s.db.Query(ctx, database.SelectAvailableSetMealsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []models.SetMeal
	for rows.Next() {
		var m models.SetMeal
		if err := scanSetMeal(rows, &m); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// GetSetMeal returns one set-meal or models.ErrNotFound.
func (s *PostgresStore) GetSetMeal(ctx context.Context, id int) (*models.SetMeal, error) {
	var m models.SetMeal
	err := scanSetMeal(s.db.QueryRow(ctx, database.SelectSetMealSQL, id), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("set meal %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// InsertSetMeal persists a set-meal with its constituent rows atomically.
func (s *PostgresStore) InsertSetMeal(ctx context.Context, meal *models.SetMeal, lines []models.SetMealLine) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, database.InsertSetMealSQL,
			meal.Name, meal.Price, meal.MemberPrice, meal.Description,
		).Scan(&meal.ID, &meal.CreatedAt, &meal.UpdatedAt)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := tx.Exec(ctx, database.InsertSetMealItemSQL, meal.ID, line.ItemID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetMealConstituents returns the set-meal's lines joined with item details.
func (s *PostgresStore) SetMealConstituents(ctx context.Context, setMealID int) ([]models.SetMealConstituent, error) {
	rows, err := s.db.Query(ctx, database.SelectSetMealConstituentsSQL, setMealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var constituents []models.SetMealConstituent
	for rows.Next() {
		var c models.SetMealConstituent
		if err := rows.Scan(&c.ItemID, &c.Name, &c.Quantity, &c.Price); err != nil {
			return nil, err
		}
		constituents = append(constituents, c)
	}
	return constituents, rows.Err()
}

// DeleteSetMeal removes a set-meal and its join rows atomically.
func (s *PostgresStore) DeleteSetMeal(ctx context.Context, id int) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, database.DeleteSetMealItemsSQL, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, database.DeleteSetMealSQL, id)
		return err
	})
}

// WithReorderLock runs fn inside a transaction holding the category-reorder
// advisory lock.
func (s *PostgresStore) WithReorderLock(ctx context.Context, fn func(tx CategoryTx) error) error {
	return s.db.WithNamedLock(ctx, ReorderLockName, func(tx pgx.Tx) error {
		return fn(&categoryTx{tx: tx})
	})
}

// categoryTx implements CategoryTx over a live transaction.
type categoryTx struct {
	tx pgx.Tx
}

func (t *categoryTx) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := t.tx.Query(ctx, database.SelectCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (t *categoryTx) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	var c models.Category
	err := scanCategory(t.tx.QueryRow(ctx, database.SelectCategorySQL, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *categoryTx) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	err := scanCategory(t.tx.QueryRow(ctx, database.SelectCategoryByNameFoldSQL, name), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *categoryTx) MaxSortOrder(ctx context.Context) (int, error) {
	var max int
	err := t.tx.QueryRow(ctx, database.SelectMaxSortOrderSQL).Scan(&max)
	return max, err
}

func (t *categoryTx) SortOrderBounds(ctx context.Context) (int, int, error) {
	var min, max int
	err := t.tx.QueryRow(ctx, database.SelectSortOrderBoundsSQL).Scan(&min, &max)
	return min, max, err
}

func (t *categoryTx) InsertCategory(ctx context.Context, c *models.Category) error {
	return t.tx.QueryRow(ctx, database.InsertCategorySQL, c.Name, c.Description, c.SortOrder).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (t *categoryTx) UpdateCategory(ctx context.Context, c *models.Category) error {
	_, err := t.tx.Exec(ctx, database.UpdateCategorySQL, c.Name, c.Description, c.ID)
	return err
}

func (t *categoryTx) SetSortOrder(ctx context.Context, id, sortOrder int) error {
	_, err := t.tx.Exec(ctx, database.SetCategorySortOrderSQL, sortOrder, id)
	return err
}

func (t *categoryTx) ShiftDown(ctx context.Context, lo, hi int) error {
	_, err := t.tx.Exec(ctx, database.ShiftSortOrdersDownSQL, lo, hi)
	return err
}

func (t *categoryTx) ShiftUp(ctx context.Context, lo, hi int) error {
	_, err := t.tx.Exec(ctx, database.ShiftSortOrdersUpSQL, lo, hi)
	return err
}

func (t *categoryTx) DecrementAbove(ctx context.Context, sortOrder int) error {
	_, err := t.tx.Exec(ctx, database.DecrementSortOrdersAboveSQL, sortOrder)
	return err
}

func (t *categoryTx) DeleteCategory(ctx context.Context, id int) error {
	_, err := t.tx.Exec(ctx, database.DeleteCategorySQL, id)
	return err
}

func (t *categoryTx) CountItems(ctx context.Context, categoryID int) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, database.CountItemsInCategorySQL, categoryID).Scan(&count)
	return count, err
}

func (t *categoryTx) BulkSetSortOrders(ctx context.Context, updates []models.SortOrderUpdate) error {
	// The unique constraint on sort_order is deferred to commit, so transient
	// duplicates during the rewrite are fine.
	for _, u := range updates {
		if _, err := t.tx.Exec(ctx, database.SetCategorySortOrderSQL, u.SortOrder, u.ID); err != nil {
			return err
		}
	}
	return nil
}
