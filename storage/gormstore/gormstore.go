// Package gormstore is the relational Store backend. Domain camelCase
// fields map to snake_case columns through GORM's naming strategy; "not
// found" and "query error" are distinct outcomes (ErrorRecordNotFound vs
// StorageError).
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
	"gorm.io/gorm"
)

// Backend calls carry a timeout so a stalled database surfaces as a
// StorageError instead of hanging the caller.
const requestTimeout = 10 * time.Second

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates/updates the schema for all owned entities.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&models.InventoryItem{},
		&models.Recipe{},
		&models.RecipeItem{},
		&models.Notification{},
	)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return utils.NewStorageError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return utils.NewStorageError("ping", err)
	}
	return nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, requestTimeout)
}

// fetchOne loads a record by primary key.
// (may return ErrorRecordNotFound)
func fetchOne[T any](ctx context.Context, db *gorm.DB, id int) (*T, error) {
	var result T
	err := db.WithContext(ctx).First(&result, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, utils.NewStorageError("fetch", err)
	}
	return &result, nil
}

func fetchWhere[T any](ctx context.Context, db *gorm.DB, cond string, args ...interface{}) ([]*T, error) {
	var results []*T
	dbCtx := db.WithContext(ctx)
	if cond != "" {
		dbCtx = dbCtx.Where(cond, args...)
	}
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, utils.NewStorageError("list", err)
	}
	return results, nil
}

/* inventory */

func (s *Store) InventoryItems(ctx context.Context) ([]*models.InventoryItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchWhere[models.InventoryItem](ctx, s.db, "")
}

func (s *Store) InventoryItemsByCategory(ctx context.Context, category string) ([]*models.InventoryItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchWhere[models.InventoryItem](ctx, s.db, "category = ?", category)
}

func (s *Store) LowStockItems(ctx context.Context) ([]*models.InventoryItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchWhere[models.InventoryItem](ctx, s.db, "current_qty < ideal_qty")
}

func (s *Store) InventoryItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchOne[models.InventoryItem](ctx, s.db, id)
}

func (s *Store) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return utils.NewStorageError("create inventory item", err)
	}
	return nil
}

func (s *Store) UpdateInventoryItem(ctx context.Context, id int, input *models.UpdateInventoryItem) (*models.InventoryItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	item, err := fetchOne[models.InventoryItem](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	input.Apply(item)
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, utils.NewStorageError("update inventory item", err)
	}
	return item, nil
}

// AdjustStock expresses the increment as a single conditional UPDATE so
// concurrent deltas against the same row serialize inside the database:
//
//	UPDATE ... SET current_qty = current_qty + ?
//	WHERE id = ? AND current_qty + ? >= 0
func (s *Store) AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.InventoryItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	updates := map[string]interface{}{
		"current_qty": gorm.Expr("current_qty + ?", adj.QuantityChange),
		"updated_at":  time.Now(),
	}
	if adj.UnitPrice != nil {
		updates["unit_price"] = *adj.UnitPrice
	}
	if adj.TotalPrice != nil {
		updates["total_price"] = *adj.TotalPrice
	}

	res := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("id = ? AND current_qty + ? >= 0", id, adj.QuantityChange).
		Updates(updates)
	if res.Error != nil {
		return nil, utils.NewStorageError("adjust stock", res.Error)
	}
	if res.RowsAffected == 0 {
		// Zero rows: either the id does not exist or the guard rejected a
		// negative result. Disambiguate with a follow-up read.
		if _, err := fetchOne[models.InventoryItem](ctx, s.db, id); err != nil {
			return nil, err
		}
		return nil, utils.ErrorInsufficientStock
	}
	return fetchOne[models.InventoryItem](ctx, s.db, id)
}

/* recipes */

func (s *Store) Recipes(ctx context.Context) ([]*models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchWhere[models.Recipe](ctx, s.db, "")
}

func (s *Store) RecipesByCategory(ctx context.Context, category string) ([]*models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchWhere[models.Recipe](ctx, s.db, "category = ?", category)
}

func (s *Store) RecipesByOrderType(ctx context.Context, orderType string) ([]*models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchWhere[models.Recipe](ctx, s.db, "order_type = ?", orderType)
}

func (s *Store) Recipe(ctx context.Context, id int) (*models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchOne[models.Recipe](ctx, s.db, id)
}

func (s *Store) RecipeByDish(ctx context.Context, dishName, orderType string) (*models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	candidates, err := fetchWhere[models.Recipe](ctx, s.db,
		"dish_name = ? AND is_active = ? AND order_type IN ?",
		dishName, true, []string{orderType, models.OrderTypeBoth})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	// exact channel match wins over "both"
	for _, r := range candidates {
		if r.OrderType == orderType {
			return r, nil
		}
	}
	return candidates[0], nil
}

func (s *Store) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("dish_name = ? AND order_type = ?", recipe.DishName, recipe.OrderType).
		Count(&count).Error
	if err != nil {
		return utils.NewStorageError("create recipe", err)
	}
	if count > 0 {
		return utils.NewValidationError("dish_name", "order_type")
	}
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return utils.NewStorageError("create recipe", err)
	}
	return nil
}

func (s *Store) UpdateRecipe(ctx context.Context, id int, input *models.UpdateRecipe) (*models.Recipe, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	recipe, err := fetchOne[models.Recipe](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	input.Apply(recipe)
	if err := s.db.WithContext(ctx).Save(recipe).Error; err != nil {
		return nil, utils.NewStorageError("update recipe", err)
	}
	return recipe, nil
}

/* recipe items */

func (s *Store) RecipeIngredients(ctx context.Context, recipeID int) ([]*models.RecipeIngredient, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	sql := `
SELECT
    ri.id,
    ri.recipe_id,
    ri.inventory_item_id,
    ri.quantity_required,
    ri.unit,
    ii.name AS item_name,
    ii.unit AS item_unit,
    ii.unit_price,
    ii.current_qty,
    ii.ideal_qty
FROM
    recipe_items ri
    LEFT JOIN inventory_items ii ON ii.id = ri.inventory_item_id
WHERE
    ri.recipe_id = ?
ORDER BY
    ri.id`

	var rows []*models.RecipeIngredient
	if err := s.db.WithContext(ctx).Raw(sql, recipeID).Scan(&rows).Error; err != nil {
		return nil, utils.NewStorageError("recipe ingredients", err)
	}
	return rows, nil
}

func (s *Store) RecipeItem(ctx context.Context, id int) (*models.RecipeItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	return fetchOne[models.RecipeItem](ctx, s.db, id)
}

func (s *Store) CreateRecipeItem(ctx context.Context, item *models.RecipeItem) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if err := s.validateResourceId(ctx, &models.Recipe{}, item.RecipeID); err != nil {
		return err
	}
	if err := s.validateResourceId(ctx, &models.InventoryItem{}, item.InventoryItemID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return utils.NewStorageError("create recipe item", err)
	}
	return nil
}

func (s *Store) validateResourceId(ctx context.Context, model interface{}, id int) error {
	var count int64
	err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return utils.NewStorageError("validate id", err)
	}
	if count <= 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

func (s *Store) UpdateRecipeItem(ctx context.Context, id int, input *models.UpdateRecipeItem) (*models.RecipeItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	item, err := fetchOne[models.RecipeItem](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	input.Apply(item)
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, utils.NewStorageError("update recipe item", err)
	}
	return item, nil
}

func (s *Store) DeleteRecipeItem(ctx context.Context, id int) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	res := s.db.WithContext(ctx).Delete(&models.RecipeItem{}, id)
	if res.Error != nil {
		return utils.NewStorageError("delete recipe item", res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

/* notifications */

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return utils.NewStorageError("create notification", err)
	}
	return nil
}

func (s *Store) Notifications(ctx context.Context, unreadOnly bool) ([]*models.Notification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	var results []*models.Notification
	dbCtx := s.db.WithContext(ctx)
	if unreadOnly {
		dbCtx = dbCtx.Where("is_read = ?", false)
	}
	if err := dbCtx.Order("id DESC").Find(&results).Error; err != nil {
		return nil, utils.NewStorageError("list notifications", err)
	}
	return results, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id int) (*models.Notification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return nil, utils.NewStorageError("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		// may also mean it was already read; report whichever the read says
		if n, err := fetchOne[models.Notification](ctx, s.db, id); err == nil {
			return n, nil
		}
		return nil, utils.ErrorRecordNotFound
	}
	return fetchOne[models.Notification](ctx, s.db, id)
}
