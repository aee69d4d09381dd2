package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opsdine/resto_backend/models"
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

func seedItem(t *testing.T, s *Store, name, current, ideal string) *models.InventoryItem {
	t.Helper()
	item := &models.InventoryItem{
		Name:       name,
		Unit:       "kg",
		PackageQty: dec(t, "1"),
		UnitPrice:  dec(t, "2.50"),
		IdealQty:   dec(t, ideal),
		CurrentQty: dec(t, current),
	}
	if err := s.CreateInventoryItem(context.Background(), item); err != nil {
		t.Fatalf("CreateInventoryItem(%q): %v", name, err)
	}
	return item
}

func seedRecipe(t *testing.T, s *Store, dish, orderType string) *models.Recipe {
	t.Helper()
	active := true
	r := &models.Recipe{DishName: dish, OrderType: orderType, IsActive: &active}
	if err := s.CreateRecipe(context.Background(), r); err != nil {
		t.Fatalf("CreateRecipe(%q, %q): %v", dish, orderType, err)
	}
	return r
}

func TestInventoryCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	created := seedItem(t, s, "Mozzarella", "5", "10")
	if created.ID == 0 {
		t.Fatal("CreateInventoryItem did not assign an id")
	}

	got, err := s.InventoryItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	if got.Name != "Mozzarella" || !got.CurrentQty.Equal(dec(t, "5")) {
		t.Fatalf("InventoryItem = %+v", got)
	}

	// Mutating the returned value must not touch the stored copy.
	got.Name = "Cheddar"
	again, err := s.InventoryItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	if again.Name != "Mozzarella" {
		t.Fatalf("store leaked internal state: name = %q", again.Name)
	}

	newName := "Buffalo Mozzarella"
	updated, err := s.UpdateInventoryItem(ctx, created.ID, &models.UpdateInventoryItem{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateInventoryItem: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("UpdateInventoryItem name = %q, want %q", updated.Name, newName)
	}
	if !updated.CurrentQty.Equal(dec(t, "5")) {
		t.Fatalf("partial update clobbered current_qty: %s", updated.CurrentQty)
	}

	if _, err := s.InventoryItem(ctx, 9999); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("missing id error = %v, want ErrorRecordNotFound", err)
	}
}

func TestLowStockItems(t *testing.T) {
	s := New()
	ctx := context.Background()

	low := seedItem(t, s, "Basil", "2", "10")
	seedItem(t, s, "Olive Oil", "6", "6")
	seedItem(t, s, "Salt", "20", "5")

	items, err := s.LowStockItems(ctx)
	if err != nil {
		t.Fatalf("LowStockItems: %v", err)
	}
	if len(items) != 1 || items[0].ID != low.ID {
		t.Fatalf("LowStockItems = %+v, want only %q", items, low.Name)
	}

	// Raising ideal_qty above current must pull an item into the set.
	ideal := dec(t, "30")
	if _, err := s.UpdateInventoryItem(ctx, low.ID+1, &models.UpdateInventoryItem{IdealQty: &ideal}); err != nil {
		t.Fatalf("UpdateInventoryItem: %v", err)
	}
	items, err = s.LowStockItems(ctx)
	if err != nil {
		t.Fatalf("LowStockItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("after ideal raise LowStockItems count = %d, want 2", len(items))
	}
}

func TestAdjustStockRejectsNegative(t *testing.T) {
	s := New()
	ctx := context.Background()
	item := seedItem(t, s, "Flour", "3", "10")

	_, err := s.AdjustStock(ctx, item.ID, &models.StockAdjustment{QuantityChange: dec(t, "-5")})
	if !errors.Is(err, utils.ErrorInsufficientStock) {
		t.Fatalf("overdraw error = %v, want ErrorInsufficientStock", err)
	}

	got, err := s.InventoryItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	if !got.CurrentQty.Equal(dec(t, "3")) {
		t.Fatalf("failed adjustment changed stock: %s", got.CurrentQty)
	}

	// Draining to exactly zero is allowed.
	after, err := s.AdjustStock(ctx, item.ID, &models.StockAdjustment{QuantityChange: dec(t, "-3")})
	if err != nil {
		t.Fatalf("AdjustStock to zero: %v", err)
	}
	if !after.CurrentQty.IsZero() {
		t.Fatalf("CurrentQty = %s, want 0", after.CurrentQty)
	}
}

func TestAdjustStockConcurrentConservation(t *testing.T) {
	s := New()
	ctx := context.Background()
	item := seedItem(t, s, "Rice", "1000", "100")

	const workers = 50
	delta := dec(t, "-2")
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.AdjustStock(ctx, item.ID, &models.StockAdjustment{QuantityChange: delta}); err != nil {
				t.Errorf("AdjustStock: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.InventoryItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}
	want := dec(t, "900")
	if !got.CurrentQty.Equal(want) {
		t.Fatalf("CurrentQty = %s, want %s (lost updates)", got.CurrentQty, want)
	}
}

func TestRecipeByDishChannelMatching(t *testing.T) {
	s := New()
	ctx := context.Background()

	both := seedRecipe(t, s, "Margherita", models.OrderTypeBoth)
	dineIn := seedRecipe(t, s, "Marinara", models.OrderTypeDineIn)
	takeaway := seedRecipe(t, s, "Marinara", models.OrderTypeTakeaway)

	cases := []struct {
		name      string
		dish      string
		orderType string
		wantID    int
		wantErr   error
	}{
		{name: "both matches dine-in", dish: "Margherita", orderType: models.OrderTypeDineIn, wantID: both.ID},
		{name: "both matches takeaway", dish: "Margherita", orderType: models.OrderTypeTakeaway, wantID: both.ID},
		{name: "exact dine-in", dish: "Marinara", orderType: models.OrderTypeDineIn, wantID: dineIn.ID},
		{name: "exact takeaway", dish: "Marinara", orderType: models.OrderTypeTakeaway, wantID: takeaway.ID},
		{name: "unknown dish", dish: "Calzone", orderType: models.OrderTypeDineIn, wantErr: utils.ErrorRecordNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.RecipeByDish(ctx, tc.dish, tc.orderType)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RecipeByDish: %v", err)
			}
			if got.ID != tc.wantID {
				t.Fatalf("recipe id = %d, want %d", got.ID, tc.wantID)
			}
		})
	}
}

func TestRecipeByDishExactWinsOverBoth(t *testing.T) {
	s := New()
	ctx := context.Background()

	seedRecipe(t, s, "Diavola", models.OrderTypeBoth)
	exact := seedRecipe(t, s, "Diavola", models.OrderTypeTakeaway)

	got, err := s.RecipeByDish(ctx, "Diavola", models.OrderTypeTakeaway)
	if err != nil {
		t.Fatalf("RecipeByDish: %v", err)
	}
	if got.ID != exact.ID {
		t.Fatalf("recipe id = %d, want exact channel %d", got.ID, exact.ID)
	}
}

func TestRecipeByDishSkipsInactive(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := seedRecipe(t, s, "Quattro Formaggi", models.OrderTypeBoth)
	inactive := false
	if _, err := s.UpdateRecipe(ctx, r.ID, &models.UpdateRecipe{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}
	if _, err := s.RecipeByDish(ctx, "Quattro Formaggi", models.OrderTypeDineIn); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("inactive recipe matched, err = %v", err)
	}
}

func TestCreateRecipeDuplicateChannel(t *testing.T) {
	s := New()
	seedRecipe(t, s, "Capricciosa", models.OrderTypeDineIn)

	active := true
	err := s.CreateRecipe(context.Background(), &models.Recipe{
		DishName:  "Capricciosa",
		OrderType: models.OrderTypeDineIn,
		IsActive:  &active,
	})
	if !utils.IsValidationError(err) {
		t.Fatalf("duplicate (dish, order_type) error = %v, want ValidationError", err)
	}
}

func TestRecipeItemsAndIngredients(t *testing.T) {
	s := New()
	ctx := context.Background()

	item := seedItem(t, s, "Mozzarella", "5", "10")
	recipe := seedRecipe(t, s, "Margherita", models.OrderTypeBoth)

	ri := &models.RecipeItem{RecipeID: recipe.ID, InventoryItemID: item.ID, QuantityRequired: dec(t, "0.2"), Unit: "kg"}
	if err := s.CreateRecipeItem(ctx, ri); err != nil {
		t.Fatalf("CreateRecipeItem: %v", err)
	}

	// Both foreign keys are checked up front.
	if err := s.CreateRecipeItem(ctx, &models.RecipeItem{RecipeID: 9999, InventoryItemID: item.ID, QuantityRequired: dec(t, "1")}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("missing recipe fk error = %v, want ErrorRecordNotFound", err)
	}
	if err := s.CreateRecipeItem(ctx, &models.RecipeItem{RecipeID: recipe.ID, InventoryItemID: 9999, QuantityRequired: dec(t, "1")}); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("missing item fk error = %v, want ErrorRecordNotFound", err)
	}

	ingredients, err := s.RecipeIngredients(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("RecipeIngredients: %v", err)
	}
	if len(ingredients) != 1 {
		t.Fatalf("RecipeIngredients count = %d, want 1", len(ingredients))
	}
	ing := ingredients[0]
	if ing.ItemName != "Mozzarella" || !ing.CurrentQty.Equal(dec(t, "5")) || !ing.QuantityRequired.Equal(dec(t, "0.2")) {
		t.Fatalf("joined ingredient = %+v", ing)
	}

	if err := s.DeleteRecipeItem(ctx, ri.ID); err != nil {
		t.Fatalf("DeleteRecipeItem: %v", err)
	}
	if err := s.DeleteRecipeItem(ctx, ri.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("double delete error = %v, want ErrorRecordNotFound", err)
	}
	ingredients, err = s.RecipeIngredients(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("RecipeIngredients: %v", err)
	}
	if len(ingredients) != 0 {
		t.Fatalf("RecipeIngredients after delete = %d, want 0", len(ingredients))
	}
}

func TestNotifications(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := &models.Notification{Type: models.NotificationTypeLowStock, Message: "basil is low"}
	second := &models.Notification{Type: models.NotificationTypeOrderFulfilled, Message: "margherita fulfilled"}
	if err := s.CreateNotification(ctx, first); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	if err := s.CreateNotification(ctx, second); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	all, err := s.Notifications(ctx, false)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("Notifications order = %+v, want newest first", all)
	}

	read, err := s.MarkNotificationRead(ctx, first.ID)
	if err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if read.IsRead == nil || !*read.IsRead {
		t.Fatalf("MarkNotificationRead left is_read = %v", read.IsRead)
	}

	unread, err := s.Notifications(ctx, true)
	if err != nil {
		t.Fatalf("Notifications(unread): %v", err)
	}
	if len(unread) != 1 || unread[0].ID != second.ID {
		t.Fatalf("unread = %+v, want only id %d", unread, second.ID)
	}
}
