package catalog

import (
	"context"
	"fmt"

	"table-order-system/internal/logger"
	"table-order-system/internal/models"
)

// ReorderLockName keys the advisory lock serializing every mutation of the
// category sort sequence.
const ReorderLockName = "category-reorder"

// Store is the catalog persistence boundary.
type Store interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	ListAvailableItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id int) (*models.Item, error)
	InsertItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int) error
	CountSetMealsUsingItem(ctx context.Context, itemID int) (int, error)
	ListAvailableSetMeals(ctx context.Context) ([]models.SetMeal, error)
	GetSetMeal(ctx context.Context, id int) (*models.SetMeal, error)
	InsertSetMeal(ctx context.Context, meal *models.SetMeal, lines []models.SetMealLine) error
	SetMealConstituents(ctx context.Context, setMealID int) ([]models.SetMealConstituent, error)
	DeleteSetMeal(ctx context.Context, id int) error

	// WithReorderLock runs fn as the single writer of the category sort
	// sequence: one transaction, holding the category-reorder lock.
	WithReorderLock(ctx context.Context, fn func(tx CategoryTx) error) error
}

// CategoryTx is the transactional view available inside the reorder lock.
type CategoryTx interface {
	Categories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int) (*models.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	MaxSortOrder(ctx context.Context) (int, error)
	SortOrderBounds(ctx context.Context) (min, max int, err error)
	InsertCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	SetSortOrder(ctx context.Context, id, sortOrder int) error
	// ShiftDown decrements sort_order for every category in (lo, hi].
	ShiftDown(ctx context.Context, lo, hi int) error
	// ShiftUp increments sort_order for every category in [lo, hi).
	ShiftUp(ctx context.Context, lo, hi int) error
	// DecrementAbove decrements sort_order for every category above the value.
	DecrementAbove(ctx context.Context, sortOrder int) error
	DeleteCategory(ctx context.Context, id int) error
	CountItems(ctx context.Context, categoryID int) (int, error)
	BulkSetSortOrders(ctx context.Context, updates []models.SortOrderUpdate) error
}

// Service owns the menu catalog: categories with their dense sort order,
// items, and set-meals.
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a new catalog service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, logger: log}
}

// AddCategory appends a category at the end of the sort sequence. The
// duplicate-name check and the max+1 assignment run inside the reorder lock,
// so two concurrent adds can never compute the same sort order.
func (s *Service) AddCategory(ctx context.Context, req *models.AddCategoryRequest, requestID string) (*models.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.store.WithReorderLock(ctx, func(tx CategoryTx) error {
		existing, err := tx.FindCategoryByName(ctx, req.Name)
		if err != nil {
			return fmt.Errorf("check duplicate name: %w", err)
		}
		if existing != nil {
			return models.ValidationError{Field: "name", Message: "a category with this name already exists"}
		}

		maxSort, err := tx.MaxSortOrder(ctx)
		if err != nil {
			return fmt.Errorf("read max sort order: %w", err)
		}

		category.SortOrder = maxSort + 1
		if err := tx.InsertCategory(ctx, category); err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("category_added", "Category added", requestID, map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
		"sort_order":  category.SortOrder,
	})
	return category, nil
}

// EditCategory renames a category and optionally moves it to a new position.
// A move shifts every category strictly between the old and new position by
// one, inside the same transaction, so no reader ever observes a gap.
func (s *Service) EditCategory(ctx context.Context, id int, req *models.EditCategoryRequest, requestID string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	err := s.store.WithReorderLock(ctx, func(tx CategoryTx) error {
		category, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		existing, err := tx.FindCategoryByName(ctx, req.Name)
		if err != nil {
			return fmt.Errorf("check duplicate name: %w", err)
		}
		if existing != nil && existing.ID != id {
			return models.ValidationError{Field: "name", Message: "a category with this name already exists"}
		}

		if req.SortOrder != nil && *req.SortOrder != category.SortOrder {
			newSort := *req.SortOrder

			minSort, maxSort, err := tx.SortOrderBounds(ctx)
			if err != nil {
				return fmt.Errorf("read sort order bounds: %w", err)
			}
			// Clamp the requested position into the existing range.
			if newSort < minSort {
				newSort = minSort
			} else if newSort > maxSort {
				newSort = maxSort
			}

			if newSort > category.SortOrder {
				if err := tx.ShiftDown(ctx, category.SortOrder, newSort); err != nil {
					return fmt.Errorf("shift categories down: %w", err)
				}
			} else if newSort < category.SortOrder {
				if err := tx.ShiftUp(ctx, newSort, category.SortOrder); err != nil {
					return fmt.Errorf("shift categories up: %w", err)
				}
			}

			if newSort != category.SortOrder {
				if err := tx.SetSortOrder(ctx, id, newSort); err != nil {
					return fmt.Errorf("set sort order: %w", err)
				}
				category.SortOrder = newSort
			}
		}

		category.Name = req.Name
		category.Description = req.Description
		if err := tx.UpdateCategory(ctx, category); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("category_edited", "Category edited", requestID, map[string]interface{}{
		"category_id": id,
	})
	return nil
}

// DeleteCategory removes an empty category and closes the gap it leaves in
// the sort sequence. Categories that still own items cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, id int, requestID string) error {
	err := s.store.WithReorderLock(ctx, func(tx CategoryTx) error {
		category, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		count, err := tx.CountItems(ctx, id)
		if err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		if count > 0 {
			return models.ErrCategoryInUse
		}

		if err := tx.DeleteCategory(ctx, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if err := tx.DecrementAbove(ctx, category.SortOrder); err != nil {
			return fmt.Errorf("close sort order gap: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("category_deleted", "Category deleted", requestID, map[string]interface{}{
		"category_id": id,
	})
	return nil
}

// Reorder applies a bulk sort-order assignment. The submitted updates must
// cover every category exactly once and their sort orders must be exactly
// the permutation {1..N}; anything else is rejected before any write.
func (s *Service) Reorder(ctx context.Context, req *models.ReorderRequest, requestID string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	err := s.store.WithReorderLock(ctx, func(tx CategoryTx) error {
		categories, err := tx.Categories(ctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}

		if len(req.Updates) != len(categories) {
			return models.ValidationError{Field: "updates", Message: "updates must cover every category exactly once"}
		}

		known := make(map[int]bool, len(categories))
		for _, c := range categories {
			known[c.ID] = true
		}

		seenSort := make(map[int]bool, len(req.Updates))
		for _, u := range req.Updates {
			if !known[u.ID] {
				return models.ValidationError{Field: "updates", Message: fmt.Sprintf("unknown category id %d", u.ID)}
			}
			if u.SortOrder < 1 || u.SortOrder > len(categories) || seenSort[u.SortOrder] {
				return models.ValidationError{Field: "updates", Message: "sort orders must be a permutation of 1..N"}
			}
			seenSort[u.SortOrder] = true
		}

		if err := tx.BulkSetSortOrders(ctx, req.Updates); err != nil {
			return fmt.Errorf("apply sort orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("categories_reordered", "Categories reordered", requestID, map[string]interface{}{
		"count": len(req.Updates),
	})
	return nil
}

// MenuSetMeal is a set-meal with its resolved constituents.
type MenuSetMeal struct {
	models.SetMeal
	Items []models.SetMealConstituent `json:"items"`
}

// Menu is the catalog read model: categories in display order, available
// items, and available set-meals with their constituents.
type Menu struct {
	Categories []models.Category `json:"categories"`
	Items      []models.Item     `json:"items"`
	SetMeals   []MenuSetMeal     `json:"set_meals"`
}

// GetMenu assembles the menu.
func (s *Service) GetMenu(ctx context.Context) (*Menu, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	items, err := s.store.ListAvailableItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	meals, err := s.store.ListAvailableSetMeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list set meals: %w", err)
	}

	menu := &Menu{
		Categories: categories,
		Items:      items,
		SetMeals:   make([]MenuSetMeal, 0, len(meals)),
	}
	for _, meal := range meals {
		constituents, err := s.store.SetMealConstituents(ctx, meal.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve set meal %d: %w", meal.ID, err)
		}
		menu.SetMeals = append(menu.SetMeals, MenuSetMeal{SetMeal: meal, Items: constituents})
	}
	return menu, nil
}

// AddItem creates an item in an existing category.
func (s *Service) AddItem(ctx context.Context, req *models.SaveItemRequest, requestID string) (*models.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	item := itemFromRequest(req)
	if err := s.store.InsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	s.logger.Info("item_added", "Item added", requestID, map[string]interface{}{
		"item_id": item.ID,
		"name":    item.Name,
	})
	return item, nil
}

// EditItem updates an existing item.
func (s *Service) EditItem(ctx context.Context, id int, req *models.SaveItemRequest, requestID string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := s.store.GetItem(ctx, id); err != nil {
		return err
	}
	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		return err
	}

	item := itemFromRequest(req)
	item.ID = id
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	s.logger.Info("item_edited", "Item edited", requestID, map[string]interface{}{
		"item_id": id,
	})
	return nil
}

// DeleteItem removes an item. Items still bundled into a set-meal cannot be
// deleted. Order history keeps its price snapshots; line display names for
// the removed item degrade to a placeholder.
func (s *Service) DeleteItem(ctx context.Context, id int, requestID string) error {
	if _, err := s.store.GetItem(ctx, id); err != nil {
		return err
	}

	count, err := s.store.CountSetMealsUsingItem(ctx, id)
	if err != nil {
		return fmt.Errorf("count set meal references: %w", err)
	}
	if count > 0 {
		return models.ErrItemInUse
	}

	if err := s.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.logger.Info("item_deleted", "Item deleted", requestID, map[string]interface{}{
		"item_id": id,
	})
	return nil
}

// AddSetMeal creates a set-meal and its constituent rows in one transaction.
// Duplicate (set_meal, item) lines are tolerated and stored as-is.
func (s *Service) AddSetMeal(ctx context.Context, req *models.AddSetMealRequest, requestID string) (*models.SetMeal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	for _, line := range req.Items {
		if _, err := s.store.GetItem(ctx, line.ItemID); err != nil {
			return nil, err
		}
	}

	meal := &models.SetMeal{
		Name:        req.Name,
		Price:       req.Price,
		MemberPrice: req.MemberPrice,
		Description: req.Description,
		IsAvailable: true,
	}
	if err := s.store.InsertSetMeal(ctx, meal, req.Items); err != nil {
		return nil, fmt.Errorf("insert set meal: %w", err)
	}

	s.logger.Info("set_meal_added", "Set meal added", requestID, map[string]interface{}{
		"set_meal_id": meal.ID,
		"name":        meal.Name,
	})
	return meal, nil
}

// GetSetMealItems returns the constituents of a set-meal.
func (s *Service) GetSetMealItems(ctx context.Context, id int) ([]models.SetMealConstituent, error) {
	if _, err := s.store.GetSetMeal(ctx, id); err != nil {
		return nil, err
	}
	return s.store.SetMealConstituents(ctx, id)
}

// DeleteSetMeal removes a set-meal and its join rows.
func (s *Service) DeleteSetMeal(ctx context.Context, id int, requestID string) error {
	if _, err := s.store.GetSetMeal(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteSetMeal(ctx, id); err != nil {
		return fmt.Errorf("delete set meal: %w", err)
	}

	s.logger.Info("set_meal_deleted", "Set meal deleted", requestID, map[string]interface{}{
		"set_meal_id": id,
	})
	return nil
}

func itemFromRequest(req *models.SaveItemRequest) *models.Item {
	item := &models.Item{
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		MemberPrice:   req.MemberPrice,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		StockQuantity: -1,
		IsAvailable:   true,
	}
	if req.StockQuantity != nil {
		item.StockQuantity = *req.StockQuantity
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	return item
}
