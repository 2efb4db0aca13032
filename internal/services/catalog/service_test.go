package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"table-order-system/internal/logger"
	"table-order-system/internal/models"
)

// memStore is an in-memory Store and CategoryTx for exercising the catalog
// logic without a database. The reorder lock degenerates to a direct call.
type memStore struct {
	categories []models.Category
	items      map[int]*models.Item
	meals      map[int]*models.SetMeal
	mealLines  map[int][]models.SetMealLine
	nextID     int
}

func newMemStore() *memStore {
	return &memStore{
		items:     make(map[int]*models.Item),
		meals:     make(map[int]*models.SetMeal),
		mealLines: make(map[int][]models.SetMealLine),
		nextID:    1,
	}
}

func (m *memStore) id() int {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) WithReorderLock(ctx context.Context, fn func(tx CategoryTx) error) error {
	return fn(m)
}

func (m *memStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return m.Categories(ctx)
}

func (m *memStore) Categories(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, len(m.categories))
	copy(out, m.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memStore) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	for i := range m.categories {
		if m.categories[i].ID == id {
			c := m.categories[i]
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
}

func (m *memStore) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	for i := range m.categories {
		if strings.EqualFold(m.categories[i].Name, name) {
			c := m.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) MaxSortOrder(ctx context.Context) (int, error) {
	max := 0
	for _, c := range m.categories {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max, nil
}

func (m *memStore) SortOrderBounds(ctx context.Context) (int, int, error) {
	min, max := 0, 0
	for i, c := range m.categories {
		if i == 0 || c.SortOrder < min {
			min = c.SortOrder
		}
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return min, max, nil
}

func (m *memStore) InsertCategory(ctx context.Context, c *models.Category) error {
	c.ID = m.id()
	m.categories = append(m.categories, *c)
	return nil
}

func (m *memStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	for i := range m.categories {
		if m.categories[i].ID == c.ID {
			m.categories[i].Name = c.Name
			m.categories[i].Description = c.Description
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memStore) SetSortOrder(ctx context.Context, id, sortOrder int) error {
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories[i].SortOrder = sortOrder
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memStore) ShiftDown(ctx context.Context, lo, hi int) error {
	for i := range m.categories {
		if m.categories[i].SortOrder > lo && m.categories[i].SortOrder <= hi {
			m.categories[i].SortOrder--
		}
	}
	return nil
}

func (m *memStore) ShiftUp(ctx context.Context, lo, hi int) error {
	for i := range m.categories {
		if m.categories[i].SortOrder >= lo && m.categories[i].SortOrder < hi {
			m.categories[i].SortOrder++
		}
	}
	return nil
}

func (m *memStore) DecrementAbove(ctx context.Context, sortOrder int) error {
	for i := range m.categories {
		if m.categories[i].SortOrder > sortOrder {
			m.categories[i].SortOrder--
		}
	}
	return nil
}

func (m *memStore) DeleteCategory(ctx context.Context, id int) error {
	for i := range m.categories {
		if m.categories[i].ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memStore) CountItems(ctx context.Context, categoryID int) (int, error) {
	count := 0
	for _, item := range m.items {
		if item.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) BulkSetSortOrders(ctx context.Context, updates []models.SortOrderUpdate) error {
	for _, u := range updates {
		if err := m.SetSortOrder(ctx, u.ID, u.SortOrder); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) ListAvailableItems(ctx context.Context) ([]models.Item, error) {
	var out []models.Item
	for _, item := range m.items {
		if item.IsAvailable {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetItem(ctx context.Context, id int) (*models.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}
	cp := *item
	return &cp, nil
}

func (m *memStore) InsertItem(ctx context.Context, item *models.Item) error {
	item.ID = m.id()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStore) UpdateItem(ctx context.Context, item *models.Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStore) DeleteItem(ctx context.Context, id int) error {
	delete(m.items, id)
	return nil
}

func (m *memStore) CountSetMealsUsingItem(ctx context.Context, itemID int) (int, error) {
	count := 0
	for _, lines := range m.mealLines {
		for _, line := range lines {
			if line.ItemID == itemID {
				count++
			}
		}
	}
	return count, nil
}

func (m *memStore) ListAvailableSetMeals(ctx context.Context) ([]models.SetMeal, error) {
	var out []models.SetMeal
	for _, meal := range m.meals {
		if meal.IsAvailable {
			out = append(out, *meal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetSetMeal(ctx context.Context, id int) (*models.SetMeal, error) {
	meal, ok := m.meals[id]
	if !ok {
		return nil, fmt.Errorf("set meal %d: %w", id, models.ErrNotFound)
	}
	cp := *meal
	return &cp, nil
}

func (m *memStore) InsertSetMeal(ctx context.Context, meal *models.SetMeal, lines []models.SetMealLine) error {
	meal.ID = m.id()
	cp := *meal
	m.meals[meal.ID] = &cp
	m.mealLines[meal.ID] = lines
	return nil
}

func (m *memStore) SetMealConstituents(ctx context.Context, setMealID int) ([]models.SetMealConstituent, error) {
	var out []models.SetMealConstituent
	for _, line := range m.mealLines[setMealID] {
		item, ok := m.items[line.ItemID]
		if !ok || !item.IsAvailable {
			continue
		}
		out = append(out, models.SetMealConstituent{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: line.Quantity,
			Price:    item.Price,
		})
	}
	return out, nil
}

func (m *memStore) DeleteSetMeal(ctx context.Context, id int) error {
	delete(m.meals, id)
	delete(m.mealLines, id)
	return nil
}

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	return NewService(store, logger.New("catalog-test")), store
}

func seedCategories(t *testing.T, svc *Service, names ...string) []models.Category {
	t.Helper()
	for _, name := range names {
		_, err := svc.AddCategory(context.Background(), &models.AddCategoryRequest{Name: name}, "test")
		require.NoError(t, err)
	}
	categories, err := svc.store.ListCategories(context.Background())
	require.NoError(t, err)
	return categories
}

// assertDense checks the sort orders form exactly the sequence 1..N.
func assertDense(t *testing.T, store *memStore) {
	t.Helper()
	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	for i, c := range categories {
		assert.Equal(t, i+1, c.SortOrder, "category %q at position %d", c.Name, i)
	}
}

func sortOrderByName(t *testing.T, store *memStore, name string) int {
	t.Helper()
	for _, c := range store.categories {
		if c.Name == name {
			return c.SortOrder
		}
	}
	t.Fatalf("category %q not found", name)
	return 0
}

func TestAddCategory_AppendsAtEnd(t *testing.T) {
	svc, store := newTestService(t)

	first, err := svc.AddCategory(context.Background(), &models.AddCategoryRequest{Name: "Starters"}, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, first.SortOrder)

	second, err := svc.AddCategory(context.Background(), &models.AddCategoryRequest{Name: "Mains"}, "test")
	require.NoError(t, err)
	assert.Equal(t, 2, second.SortOrder)

	assertDense(t, store)
}

func TestAddCategory_DuplicateNameRejected(t *testing.T) {
	svc, _ := newTestService(t)
	seedCategories(t, svc, "Drinks")

	_, err := svc.AddCategory(context.Background(), &models.AddCategoryRequest{Name: "drinks"}, "test")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestAddCategory_EmptyNameRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddCategory(context.Background(), &models.AddCategoryRequest{Name: "   "}, "test")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestEditCategory_MoveEarlierShiftsOthersUp(t *testing.T) {
	svc, store := newTestService(t)
	seedCategories(t, svc, "A", "B", "C")

	idB := 0
	for _, c := range store.categories {
		if c.Name == "B" {
			idB = c.ID
		}
	}

	target := 1
	err := svc.EditCategory(context.Background(), idB, &models.EditCategoryRequest{Name: "B", SortOrder: &target}, "test")
	require.NoError(t, err)

	assert.Equal(t, 1, sortOrderByName(t, store, "B"))
	assert.Equal(t, 2, sortOrderByName(t, store, "A"))
	assert.Equal(t, 3, sortOrderByName(t, store, "C"))
	assertDense(t, store)
}

func TestEditCategory_MoveLaterShiftsOthersDown(t *testing.T) {
	svc, store := newTestService(t)
	categories := seedCategories(t, svc, "A", "B", "C")

	target := 3
	err := svc.EditCategory(context.Background(), categories[0].ID, &models.EditCategoryRequest{Name: "A", SortOrder: &target}, "test")
	require.NoError(t, err)

	assert.Equal(t, 3, sortOrderByName(t, store, "A"))
	assert.Equal(t, 1, sortOrderByName(t, store, "B"))
	assert.Equal(t, 2, sortOrderByName(t, store, "C"))
	assertDense(t, store)
}

func TestEditCategory_SortOrderClampedToRange(t *testing.T) {
	svc, store := newTestService(t)
	categories := seedCategories(t, svc, "A", "B", "C")

	target := 99
	err := svc.EditCategory(context.Background(), categories[0].ID, &models.EditCategoryRequest{Name: "A", SortOrder: &target}, "test")
	require.NoError(t, err)

	assert.Equal(t, 3, sortOrderByName(t, store, "A"))
	assertDense(t, store)
}

func TestEditCategory_RenameToExistingNameRejected(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "A", "B")

	err := svc.EditCategory(context.Background(), categories[0].ID, &models.EditCategoryRequest{Name: "B"}, "test")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestDeleteCategory_ClosesGap(t *testing.T) {
	svc, store := newTestService(t)
	categories := seedCategories(t, svc, "A", "B", "C")

	err := svc.DeleteCategory(context.Background(), categories[1].ID, "test")
	require.NoError(t, err)

	assert.Equal(t, 1, sortOrderByName(t, store, "A"))
	assert.Equal(t, 2, sortOrderByName(t, store, "C"))
	assertDense(t, store)
}

func TestDeleteCategory_WithItemsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "Mains")

	_, err := svc.AddItem(context.Background(), &models.SaveItemRequest{
		Name:       "Fried Rice",
		CategoryID: categories[0].ID,
		Price:      decimal.NewFromFloat(9.50),
	}, "test")
	require.NoError(t, err)

	err = svc.DeleteCategory(context.Background(), categories[0].ID, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCategoryInUse))
}

func TestDeleteCategory_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteCategory(context.Background(), 42, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestReorder_AppliesPermutation(t *testing.T) {
	svc, store := newTestService(t)
	categories := seedCategories(t, svc, "A", "B", "C")

	err := svc.Reorder(context.Background(), &models.ReorderRequest{Updates: []models.SortOrderUpdate{
		{ID: categories[0].ID, SortOrder: 3},
		{ID: categories[1].ID, SortOrder: 1},
		{ID: categories[2].ID, SortOrder: 2},
	}}, "test")
	require.NoError(t, err)

	assert.Equal(t, 3, sortOrderByName(t, store, "A"))
	assert.Equal(t, 1, sortOrderByName(t, store, "B"))
	assert.Equal(t, 2, sortOrderByName(t, store, "C"))
	assertDense(t, store)
}

func TestReorder_RejectsIncompleteCoverage(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "A", "B", "C")

	err := svc.Reorder(context.Background(), &models.ReorderRequest{Updates: []models.SortOrderUpdate{
		{ID: categories[0].ID, SortOrder: 1},
		{ID: categories[1].ID, SortOrder: 2},
	}}, "test")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestReorder_RejectsDuplicateSortOrder(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "A", "B", "C")

	err := svc.Reorder(context.Background(), &models.ReorderRequest{Updates: []models.SortOrderUpdate{
		{ID: categories[0].ID, SortOrder: 1},
		{ID: categories[1].ID, SortOrder: 1},
		{ID: categories[2].ID, SortOrder: 3},
	}}, "test")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestReorder_RejectsOutOfRangeSortOrder(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "A", "B")

	err := svc.Reorder(context.Background(), &models.ReorderRequest{Updates: []models.SortOrderUpdate{
		{ID: categories[0].ID, SortOrder: 1},
		{ID: categories[1].ID, SortOrder: 5},
	}}, "test")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestReorder_RejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "A", "B")

	err := svc.Reorder(context.Background(), &models.ReorderRequest{Updates: []models.SortOrderUpdate{
		{ID: categories[0].ID, SortOrder: 1},
		{ID: 999, SortOrder: 2},
	}}, "test")
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
}

func TestContiguityHoldsAcrossMixedOperations(t *testing.T) {
	svc, store := newTestService(t)
	categories := seedCategories(t, svc, "A", "B", "C", "D", "E")

	target := 2
	require.NoError(t, svc.EditCategory(context.Background(), categories[4].ID, &models.EditCategoryRequest{Name: "E", SortOrder: &target}, "test"))
	require.NoError(t, svc.DeleteCategory(context.Background(), categories[2].ID, "test"))
	_, err := svc.AddCategory(context.Background(), &models.AddCategoryRequest{Name: "F"}, "test")
	require.NoError(t, err)

	assertDense(t, store)
	assert.Len(t, store.categories, 5)
}

func TestAddItem_UnknownCategoryRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), &models.SaveItemRequest{
		Name:       "Dumplings",
		CategoryID: 7,
		Price:      decimal.NewFromFloat(6.00),
	}, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestAddSetMeal_ResolvesConstituents(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "Mains")

	item, err := svc.AddItem(context.Background(), &models.SaveItemRequest{
		Name:       "Noodles",
		CategoryID: categories[0].ID,
		Price:      decimal.NewFromFloat(8.00),
	}, "test")
	require.NoError(t, err)

	meal, err := svc.AddSetMeal(context.Background(), &models.AddSetMealRequest{
		Name:  "Lunch Set",
		Price: decimal.NewFromFloat(12.00),
		Items: []models.SetMealLine{{ItemID: item.ID, Quantity: 2}},
	}, "test")
	require.NoError(t, err)

	constituents, err := svc.GetSetMealItems(context.Background(), meal.ID)
	require.NoError(t, err)
	require.Len(t, constituents, 1)
	assert.Equal(t, "Noodles", constituents[0].Name)
	assert.Equal(t, 2, constituents[0].Quantity)
}

func TestDeleteItem_InSetMealRejected(t *testing.T) {
	svc, store := newTestService(t)
	categories := seedCategories(t, svc, "Mains")

	item, err := svc.AddItem(context.Background(), &models.SaveItemRequest{
		Name:       "Spring Rolls",
		CategoryID: categories[0].ID,
		Price:      decimal.NewFromFloat(5.00),
	}, "test")
	require.NoError(t, err)

	_, err = svc.AddSetMeal(context.Background(), &models.AddSetMealRequest{
		Name:  "Starter Set",
		Price: decimal.NewFromFloat(9.00),
		Items: []models.SetMealLine{{ItemID: item.ID, Quantity: 1}},
	}, "test")
	require.NoError(t, err)

	err = svc.DeleteItem(context.Background(), item.ID, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrItemInUse))
	_, ok := store.items[item.ID]
	assert.True(t, ok, "item must survive the rejected delete")
}

func TestDeleteItem_UnreferencedItemRemoved(t *testing.T) {
	svc, store := newTestService(t)
	categories := seedCategories(t, svc, "Mains")

	item, err := svc.AddItem(context.Background(), &models.SaveItemRequest{
		Name:       "Soup",
		CategoryID: categories[0].ID,
		Price:      decimal.NewFromFloat(4.00),
	}, "test")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteItem(context.Background(), item.ID, "test"))
	_, ok := store.items[item.ID]
	assert.False(t, ok)
}

func TestAddSetMeal_UnknownItemRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddSetMeal(context.Background(), &models.AddSetMealRequest{
		Name:  "Ghost Set",
		Price: decimal.NewFromFloat(10.00),
		Items: []models.SetMealLine{{ItemID: 404, Quantity: 1}},
	}, "test")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestGetMenu_AssemblesCatalog(t *testing.T) {
	svc, _ := newTestService(t)
	categories := seedCategories(t, svc, "Mains", "Drinks")

	item, err := svc.AddItem(context.Background(), &models.SaveItemRequest{
		Name:       "Curry",
		CategoryID: categories[0].ID,
		Price:      decimal.NewFromFloat(11.00),
	}, "test")
	require.NoError(t, err)

	_, err = svc.AddSetMeal(context.Background(), &models.AddSetMealRequest{
		Name:  "Curry Set",
		Price: decimal.NewFromFloat(15.00),
		Items: []models.SetMealLine{{ItemID: item.ID, Quantity: 1}},
	}, "test")
	require.NoError(t, err)

	menu, err := svc.GetMenu(context.Background())
	require.NoError(t, err)
	assert.Len(t, menu.Categories, 2)
	assert.Len(t, menu.Items, 1)
	require.Len(t, menu.SetMeals, 1)
	assert.Len(t, menu.SetMeals[0].Items, 1)
}
