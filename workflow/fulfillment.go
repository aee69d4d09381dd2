package workflow

import (
	"context"
	"errors"

	"github.com/opsdine/resto_backend/config"
	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/storage"
	"github.com/opsdine/resto_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("resto-backend/workflow")

// AppliedAdjustment records one ingredient deduction that actually hit
// storage.
type AppliedAdjustment struct {
	InventoryItemID int             `json:"inventory_item_id"`
	ItemName        string          `json:"item_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	NewCurrentQty   decimal.Decimal `json:"new_current_qty"`
}

// FailedAdjustment identifies the ingredient whose deduction failed and
// stopped the loop.
type FailedAdjustment struct {
	InventoryItemID int             `json:"inventory_item_id"`
	ItemName        string          `json:"item_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	Reason          string          `json:"reason"`
}

// FulfillmentResult reports exactly which deductions were applied. There
// is no rollback: when a mid-loop adjustment fails, Applied holds the
// partial list so an operator can reconcile.
type FulfillmentResult struct {
	RecipeID      int                     `json:"recipe_id"`
	DishName      string                  `json:"dish_name"`
	OrderType     string                  `json:"order_type"`
	Success       bool                    `json:"success"`
	Applied       []AppliedAdjustment     `json:"applied"`
	Failed        *FailedAdjustment       `json:"failed,omitempty"`
	LowStockItems []*models.InventoryItem `json:"low_stock_items,omitempty"`
}

// FulfillmentEngine deducts a recipe's ingredient quantities from the
// inventory when a dish is ordered, then reports which items are below
// their ideal level.
type FulfillmentEngine struct {
	store      storage.Store
	dispatcher *Dispatcher
	logger     *logrus.Logger
}

func NewFulfillmentEngine(store storage.Store, dispatcher *Dispatcher, logger *logrus.Logger) *FulfillmentEngine {
	return &FulfillmentEngine{store: store, dispatcher: dispatcher, logger: logger}
}

// Process resolves (dishName, orderType), deducts every required
// ingredient, and returns the low-stock report. Each adjustment is issued
// independently; serialization is per-ingredient at the storage layer, so
// concurrent orders sharing an ingredient cannot lose updates.
func (e *FulfillmentEngine) Process(ctx context.Context, dishName, orderType string) (*FulfillmentResult, error) {
	ctx, span := tracer.Start(ctx, "fulfillment.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("dish_name", dishName),
		attribute.String("order_type", orderType),
	)

	recipe, err := e.store.RecipeByDish(ctx, dishName, orderType)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, utils.ErrorRecipeNotFound
		}
		return nil, err
	}

	ingredients, err := e.store.RecipeIngredients(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	if len(ingredients) == 0 {
		return nil, utils.ErrorNoIngredients
	}

	result := &FulfillmentResult{
		RecipeID:  recipe.ID,
		DishName:  recipe.DishName,
		OrderType: orderType,
		Applied:   make([]AppliedAdjustment, 0, len(ingredients)),
	}

	for _, ing := range ingredients {
		qty := ing.QuantityRequired
		if qty.Sign() <= 0 {
			continue
		}
		item, adjErr := e.store.AdjustStock(ctx, ing.InventoryItemID, &models.StockAdjustment{
			QuantityChange: qty.Neg(),
		})
		if adjErr != nil {
			// No rollback. Stop here and report the partial application.
			result.Failed = &FailedAdjustment{
				InventoryItemID: ing.InventoryItemID,
				ItemName:        ing.ItemName,
				Quantity:        qty,
				Reason:          adjErr.Error(),
			}
			config.LogError(e.logger, "workflow", "Process", "AdjustStock", result, adjErr)
			e.dispatcher.FulfillmentFailed(ctx, result)
			return result, adjErr
		}

		result.Applied = append(result.Applied, AppliedAdjustment{
			InventoryItemID: item.ID,
			ItemName:        item.Name,
			Quantity:        qty,
			NewCurrentQty:   item.CurrentQty,
		})

		// Newly low: was at or above ideal before this deduction.
		preQty := item.CurrentQty.Add(qty)
		if item.IsLowStock() && preQty.GreaterThanOrEqual(item.IdealQty) {
			e.dispatcher.LowStockAlert(ctx, item)
		}
	}

	low, err := e.store.LowStockItems(ctx)
	if err != nil {
		config.LogError(e.logger, "workflow", "Process", "LowStockItems", nil, err)
		return result, err
	}
	result.LowStockItems = low
	result.Success = true
	return result, nil
}
