package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/opsdine/resto_backend/config"
	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/storage/memstore"
	"github.com/opsdine/resto_backend/utils"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func newTestEngine(t *testing.T) (*FulfillmentEngine, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	dispatcher := NewDispatcher(store, nil, nil, config.GetLogger())
	return NewFulfillmentEngine(store, dispatcher, config.GetLogger()), store
}

func mustItem(t *testing.T, store *memstore.Store, name, current, ideal string) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Name:       name,
		Unit:       "kg",
		PackageQty: dec(t, "1"),
		UnitPrice:  dec(t, "4"),
		IdealQty:   dec(t, ideal),
		CurrentQty: dec(t, current),
	}
	if err := store.CreateInventoryItem(context.Background(), item); err != nil {
		t.Fatalf("CreateInventoryItem(%q): %v", name, err)
	}
	return item
}

func mustRecipe(t *testing.T, store *memstore.Store, dish, orderType string) *models.Recipe {
	t.Helper()
	active := true
	r := &models.Recipe{DishName: dish, OrderType: orderType, IsActive: &active}
	if err := store.CreateRecipe(context.Background(), r); err != nil {
		t.Fatalf("CreateRecipe(%q): %v", dish, err)
	}
	return r
}

func mustRequire(t *testing.T, store *memstore.Store, recipeID, itemID int, qty string) {
	t.Helper()
	ri := &models.RecipeItem{
		RecipeID:         recipeID,
		InventoryItemID:  itemID,
		QuantityRequired: dec(t, qty),
		Unit:             "kg",
	}
	if err := store.CreateRecipeItem(context.Background(), ri); err != nil {
		t.Fatalf("CreateRecipeItem: %v", err)
	}
}

func TestProcessDeductsIngredients(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	mozzarella := mustItem(t, store, "Mozzarella", "5", "10")
	recipe := mustRecipe(t, store, "Margherita", models.OrderTypeBoth)
	mustRequire(t, store, recipe.ID, mozzarella.ID, "0.2")

	result, err := engine.Process(ctx, "Margherita", models.OrderTypeDineIn)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !result.Success {
		t.Fatal("result.Success = false")
	}
	if len(result.Applied) != 1 {
		t.Fatalf("Applied = %+v, want one deduction", result.Applied)
	}
	if !result.Applied[0].NewCurrentQty.Equal(dec(t, "4.8")) {
		t.Fatalf("NewCurrentQty = %s, want 4.8", result.Applied[0].NewCurrentQty)
	}

	item, err := store.InventoryItem(ctx, mozzarella.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	if !item.CurrentQty.Equal(dec(t, "4.8")) {
		t.Fatalf("stored CurrentQty = %s, want 4.8", item.CurrentQty)
	}

	found := false
	for _, low := range result.LowStockItems {
		if low.ID == mozzarella.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("LowStockItems = %+v, want Mozzarella", result.LowStockItems)
	}

	// Already below ideal before the order, so no new alert.
	notifications, err := store.Notifications(ctx, false)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(notifications) != 0 {
		t.Fatalf("notifications = %+v, want none", notifications)
	}
}

func TestProcessUnknownDishHasNoSideEffects(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	item := mustItem(t, store, "Mozzarella", "5", "10")

	result, err := engine.Process(ctx, "Calzone", models.OrderTypeDineIn)
	if !errors.Is(err, utils.ErrorRecipeNotFound) {
		t.Fatalf("error = %v, want ErrorRecipeNotFound", err)
	}
	if result != nil {
		t.Fatalf("result = %+v, want nil", result)
	}

	got, err := store.InventoryItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	if !got.CurrentQty.Equal(dec(t, "5")) {
		t.Fatalf("CurrentQty = %s, want untouched 5", got.CurrentQty)
	}
}

func TestProcessRecipeWithoutIngredients(t *testing.T) {
	engine, store := newTestEngine(t)
	mustRecipe(t, store, "Focaccia", models.OrderTypeBoth)

	_, err := engine.Process(context.Background(), "Focaccia", models.OrderTypeTakeaway)
	if !errors.Is(err, utils.ErrorNoIngredients) {
		t.Fatalf("error = %v, want ErrorNoIngredients", err)
	}
}

func TestProcessPartialFailureKeepsAppliedDeductions(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	dough := mustItem(t, store, "Pizza Dough", "10", "20")
	mozzarella := mustItem(t, store, "Mozzarella", "0.1", "10")
	recipe := mustRecipe(t, store, "Margherita", models.OrderTypeBoth)
	mustRequire(t, store, recipe.ID, dough.ID, "1")
	mustRequire(t, store, recipe.ID, mozzarella.ID, "0.2")

	result, err := engine.Process(ctx, "Margherita", models.OrderTypeDineIn)
	if !errors.Is(err, utils.ErrorInsufficientStock) {
		t.Fatalf("error = %v, want ErrorInsufficientStock", err)
	}
	if result == nil || result.Success {
		t.Fatalf("result = %+v, want unsuccessful result", result)
	}
	if len(result.Applied) != 1 || result.Applied[0].InventoryItemID != dough.ID {
		t.Fatalf("Applied = %+v, want only the dough deduction", result.Applied)
	}
	if result.Failed == nil || result.Failed.InventoryItemID != mozzarella.ID {
		t.Fatalf("Failed = %+v, want the mozzarella line", result.Failed)
	}

	// No rollback: the dough deduction stays applied.
	gotDough, err := store.InventoryItem(ctx, dough.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	if !gotDough.CurrentQty.Equal(dec(t, "9")) {
		t.Fatalf("dough CurrentQty = %s, want 9", gotDough.CurrentQty)
	}
	gotMozz, err := store.InventoryItem(ctx, mozzarella.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	if !gotMozz.CurrentQty.Equal(dec(t, "0.1")) {
		t.Fatalf("mozzarella CurrentQty = %s, want untouched 0.1", gotMozz.CurrentQty)
	}

	notifications, err := store.Notifications(ctx, false)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != models.NotificationTypeFulfillmentFailed {
		t.Fatalf("notifications = %+v, want one fulfillment_failed", notifications)
	}
}

func TestProcessEmitsAlertWhenItemTurnsLow(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	basil := mustItem(t, store, "Basil", "10", "10")
	recipe := mustRecipe(t, store, "Pesto Pizza", models.OrderTypeBoth)
	mustRequire(t, store, recipe.ID, basil.ID, "0.5")

	result, err := engine.Process(ctx, "Pesto Pizza", models.OrderTypeDineIn)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !result.Success {
		t.Fatal("result.Success = false")
	}

	notifications, err := store.Notifications(ctx, false)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != models.NotificationTypeLowStock {
		t.Fatalf("notifications = %+v, want one low_stock alert", notifications)
	}

	// A second order finds the item already low; no duplicate alert.
	if _, err := engine.Process(ctx, "Pesto Pizza", models.OrderTypeDineIn); err != nil {
		t.Fatalf("Process: %v", err)
	}
	notifications, err = store.Notifications(ctx, false)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notification count = %d, want still 1", len(notifications))
	}
}
