package database

// Category queries
const (
	SelectCategoriesSQL = `
		SELECT id, name, description, sort_order, created_at, updated_at
		FROM categories
		ORDER BY sort_order ASC`

	SelectCategorySQL = `
		SELECT id, name, description, sort_order, created_at, updated_at
		FROM categories WHERE id = $1`

	SelectCategoryByNameFoldSQL = `
		SELECT id, name, description, sort_order, created_at, updated_at
		FROM categories WHERE LOWER(name) = LOWER($1)`

	SelectMaxSortOrderSQL = `
		SELECT COALESCE(MAX(sort_order), 0) FROM categories`

	SelectSortOrderBoundsSQL = `
		SELECT COALESCE(MIN(sort_order), 0), COALESCE(MAX(sort_order), 0) FROM categories`

	InsertCategorySQL = `
		INSERT INTO categories (name, description, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	UpdateCategorySQL = `
		UPDATE categories SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3`

	SetCategorySortOrderSQL = `
		UPDATE categories SET sort_order = $1, updated_at = NOW()
		WHERE id = $2`

	ShiftSortOrdersDownSQL = `
		UPDATE categories SET sort_order = sort_order - 1, updated_at = NOW()
		WHERE sort_order > $1 AND sort_order <= $2`

	ShiftSortOrdersUpSQL = `
		UPDATE categories SET sort_order = sort_order + 1, updated_at = NOW()
		WHERE sort_order >= $1 AND sort_order < $2`

	DecrementSortOrdersAboveSQL = `
		UPDATE categories SET sort_order = sort_order - 1, updated_at = NOW()
		WHERE sort_order > $1`

	DeleteCategorySQL = `
		DELETE FROM categories WHERE id = $1`

	CountItemsInCategorySQL = `
		SELECT COUNT(*) FROM items WHERE category_id = $1`
)

// Item and set-meal queries
const (
	SelectAvailableItemsSQL = `
		SELECT id, name, category_id, price, member_price, description, image_url,
		       stock_quantity, is_available, created_at, updated_at
		FROM items WHERE is_available ORDER BY id ASC`

	SelectItemSQL = `
		SELECT id, name, category_id, price, member_price, description, image_url,
		       stock_quantity, is_available, created_at, updated_at
		FROM items WHERE id = $1`

	InsertItemSQL = `
		INSERT INTO items (name, category_id, price, member_price, description, image_url, stock_quantity, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	UpdateItemSQL = `
		UPDATE items SET name = $1, category_id = $2, price = $3, member_price = $4,
		       description = $5, image_url = $6, stock_quantity = $7, is_available = $8,
		       updated_at = NOW()
		WHERE id = $9`

	DeleteItemSQL = `
		DELETE FROM items WHERE id = $1`

	SelectAvailableSetMealsSQL = `
		SELECT id, name, price, member_price, description, is_available, created_at, updated_at
		FROM set_meals WHERE is_available ORDER BY id ASC`

	SelectSetMealSQL = `
		SELECT id, name, price, member_price, description, is_available, created_at, updated_at
		FROM set_meals WHERE id = $1`

	InsertSetMealSQL = `
		INSERT INTO set_meals (name, price, member_price, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	InsertSetMealItemSQL = `
		INSERT INTO set_meal_items (set_meal_id, item_id, quantity)
		VALUES ($1, $2, $3)`

	SelectSetMealConstituentsSQL = `
		SELECT smi.item_id, i.name, smi.quantity, i.price
		FROM set_meal_items smi
		JOIN items i ON smi.item_id = i.id
		WHERE smi.set_meal_id = $1 AND i.is_available
		ORDER BY smi.id ASC`

	CountSetMealsUsingItemSQL = `
		SELECT COUNT(*) FROM set_meal_items WHERE item_id = $1`

	DeleteSetMealItemsSQL = `
		DELETE FROM set_meal_items WHERE set_meal_id = $1`

	DeleteSetMealSQL = `
		DELETE FROM set_meals WHERE id = $1`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (order_number, table_number, status, payment_status, total_amount, actual_amount, staff_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	InsertOrderLineSQL = `
		INSERT INTO order_items (order_id, item_id, set_meal_id, quantity, original_price, actual_price, item_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	SelectOrderSQL = `
		SELECT id, order_number, table_number, status, payment_status, total_amount, actual_amount,
		       staff_id, created_at, updated_at, completed_at,
		       pos_serial, pos_status, payment_method, payment_time
		FROM orders WHERE id = $1`

	SelectOrderByNumberSQL = `
		SELECT id, order_number, table_number, status, payment_status, total_amount, actual_amount,
		       staff_id, created_at, updated_at, completed_at,
		       pos_serial, pos_status, payment_method, payment_time
		FROM orders WHERE order_number = $1`

	// Line display names are resolved through the item_type discriminator.
	// A dangling reference degrades to a placeholder instead of failing.
	SelectOrderLinesSQL = `
		SELECT ol.id, ol.order_id, ol.item_id, ol.set_meal_id, ol.quantity,
		       ol.original_price, ol.actual_price, ol.item_type, ol.created_at,
		       COALESCE(CASE WHEN ol.item_type = 'item' THEN i.name ELSE sm.name END, '(removed)')
		FROM order_items ol
		LEFT JOIN items i ON ol.item_id = i.id
		LEFT JOIN set_meals sm ON ol.set_meal_id = sm.id
		WHERE ol.order_id = $1
		ORDER BY ol.id ASC`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2`

	UpdateOrderCompletedSQL = `
		UPDATE orders SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE id = $2`

	ApplyPosPaymentSQL = `
		UPDATE orders SET pos_serial = $1, pos_status = $2, payment_method = $3,
		       payment_time = $4, updated_at = NOW()
		WHERE id = $5`

	MarkOrderPaidSQL = `
		UPDATE orders SET payment_status = $1, status = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $3`

	SelectStaffSQL = `
		SELECT id, employee_id, name FROM staff WHERE id = $1`
)
