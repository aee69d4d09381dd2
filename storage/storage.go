// Package storage defines the persistence port the ledger, catalog and
// fulfillment engine are written against. Three adapters satisfy it: an
// in-process map store (memstore), a GORM relational store (gormstore)
// and a hosted-database HTTP client (supastore). All three must honor
// identical success/failure semantics; swapping backends must not change
// observable behavior of the callers.
package storage

import (
	"context"

	"github.com/opsdine/resto_backend/models"
)

type Store interface {
	// Inventory. AdjustStock applies quantity_change as a single atomic
	// increment: N concurrent adjustments with deltas d1..dN converge to
	// initial + sum(di). An adjustment that would drive current_qty below
	// zero fails with utils.ErrorInsufficientStock and changes nothing.
	InventoryItems(ctx context.Context) ([]*models.InventoryItem, error)
	InventoryItemsByCategory(ctx context.Context, category string) ([]*models.InventoryItem, error)
	LowStockItems(ctx context.Context) ([]*models.InventoryItem, error)
	InventoryItem(ctx context.Context, id int) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error
	UpdateInventoryItem(ctx context.Context, id int, input *models.UpdateInventoryItem) (*models.InventoryItem, error)
	AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.InventoryItem, error)

	// Recipes. RecipeByDish resolves (dish_name, order_type); a recipe
	// stored as "both" matches either channel, an exact channel match wins
	// when both exist.
	Recipes(ctx context.Context) ([]*models.Recipe, error)
	RecipesByCategory(ctx context.Context, category string) ([]*models.Recipe, error)
	RecipesByOrderType(ctx context.Context, orderType string) ([]*models.Recipe, error)
	Recipe(ctx context.Context, id int) (*models.Recipe, error)
	RecipeByDish(ctx context.Context, dishName, orderType string) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	UpdateRecipe(ctx context.Context, id int, input *models.UpdateRecipe) (*models.Recipe, error)

	// Recipe items. RecipeIngredients returns requirements joined with the
	// current inventory snapshot; an empty slice is a valid result.
	// DeleteRecipeItem is the only hard delete in the system.
	RecipeIngredients(ctx context.Context, recipeID int) ([]*models.RecipeIngredient, error)
	RecipeItem(ctx context.Context, id int) (*models.RecipeItem, error)
	CreateRecipeItem(ctx context.Context, item *models.RecipeItem) error
	UpdateRecipeItem(ctx context.Context, id int, input *models.UpdateRecipeItem) (*models.RecipeItem, error)
	DeleteRecipeItem(ctx context.Context, id int) error

	// Notifications.
	CreateNotification(ctx context.Context, n *models.Notification) error
	Notifications(ctx context.Context, unreadOnly bool) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int) (*models.Notification, error)

	Ping(ctx context.Context) error
}
