package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/opsdine/resto_backend/config"
	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/storage"
	"github.com/opsdine/resto_backend/storage/gormstore"
	"github.com/opsdine/resto_backend/storage/supastore"
	"github.com/opsdine/resto_backend/workflow"
	"github.com/shopspring/decimal"
)

type seedIngredient struct {
	itemName string
	qty      string
}

type seedRecipe struct {
	input       models.NewRecipe
	ingredients []seedIngredient
}

// Loads a small pizzeria dataset into the configured backend so the API
// can be exercised end to end.
func main() {
	var store storage.Store

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))
	switch backend {
	case "supabase":
		store = supastore.New(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_SERVICE_KEY"))
	case "", "gorm", "database":
		config.ConnectDatabaseWithRetry()
		gs := gormstore.New(config.GetDB())
		if err := gs.Migrate(); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		store = gs
	default:
		log.Fatalf("seed-demo needs STORAGE_BACKEND=gorm or supabase, got %q", backend)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ledger := workflow.NewInventoryLedger(store)
	catalog := workflow.NewRecipeCatalog(store)

	items := []models.NewInventoryItem{
		{Name: "Mozzarella", Unit: "kg", PackageQty: dec("1"), UnitPrice: dec("9.50"), TotalPrice: dec("9.50"), IdealQty: dec("10"), CurrentQty: dec("5"), ShelfLifeDays: days(14), Category: "dairy"},
		{Name: "Tomato Sauce", Unit: "l", PackageQty: dec("5"), UnitPrice: dec("3.20"), TotalPrice: dec("16.00"), IdealQty: dec("20"), CurrentQty: dec("18"), ShelfLifeDays: days(30), Category: "sauce"},
		{Name: "Pizza Dough", Unit: "pcs", PackageQty: dec("20"), UnitPrice: dec("0.80"), TotalPrice: dec("16.00"), IdealQty: dec("60"), CurrentQty: dec("42"), ShelfLifeDays: days(3), Category: "bakery"},
		{Name: "Basil", Unit: "g", PackageQty: dec("100"), UnitPrice: dec("0.04"), TotalPrice: dec("4.00"), IdealQty: dec("500"), CurrentQty: dec("120"), ShelfLifeDays: days(5), Category: "herbs"},
		{Name: "Olive Oil", Unit: "l", PackageQty: dec("1"), UnitPrice: dec("11.00"), TotalPrice: dec("11.00"), IdealQty: dec("6"), CurrentQty: dec("6"), Category: "pantry"},
		{Name: "Takeaway Box", Unit: "pcs", PackageQty: dec("50"), UnitPrice: dec("0.25"), TotalPrice: dec("12.50"), IdealQty: dec("200"), CurrentQty: dec("35"), Category: "packaging"},
	}

	itemIDs := make(map[string]int, len(items))
	for i := range items {
		item, err := ledger.Create(ctx, &items[i])
		if err != nil {
			log.Fatalf("seed inventory %q: %v", items[i].Name, err)
		}
		itemIDs[item.Name] = item.ID
		log.Printf("inventory item %q -> id %d", item.Name, item.ID)
	}

	recipes := []seedRecipe{
		{
			input: models.NewRecipe{DishName: "Margherita", OrderType: models.OrderTypeBoth, Description: "Tomato, mozzarella, basil", Category: "pizza", SellingPrice: dec("11.50")},
			ingredients: []seedIngredient{
				{"Pizza Dough", "1"}, {"Tomato Sauce", "0.1"}, {"Mozzarella", "0.2"}, {"Basil", "5"}, {"Olive Oil", "0.01"},
			},
		},
		{
			input: models.NewRecipe{DishName: "Marinara", OrderType: models.OrderTypeDineIn, Description: "Tomato, garlic, oregano", Category: "pizza", SellingPrice: dec("9.00")},
			ingredients: []seedIngredient{
				{"Pizza Dough", "1"}, {"Tomato Sauce", "0.12"}, {"Olive Oil", "0.02"},
			},
		},
		{
			input: models.NewRecipe{DishName: "Marinara", OrderType: models.OrderTypeTakeaway, Description: "Tomato, garlic, oregano, boxed", Category: "pizza", SellingPrice: dec("9.00")},
			ingredients: []seedIngredient{
				{"Pizza Dough", "1"}, {"Tomato Sauce", "0.12"}, {"Olive Oil", "0.02"}, {"Takeaway Box", "1"},
			},
		},
	}

	for i := range recipes {
		recipe, err := catalog.Create(ctx, &recipes[i].input)
		if err != nil {
			log.Fatalf("seed recipe %q: %v", recipes[i].input.DishName, err)
		}
		for _, ing := range recipes[i].ingredients {
			itemID, ok := itemIDs[ing.itemName]
			if !ok {
				log.Fatalf("seed recipe %q: unknown ingredient %q", recipe.DishName, ing.itemName)
			}
			_, err := catalog.AddIngredient(ctx, recipe.ID, &models.NewRecipeItem{
				InventoryItemID:  itemID,
				QuantityRequired: dec(ing.qty),
				Unit:             items[indexOf(items, ing.itemName)].Unit,
			})
			if err != nil {
				log.Fatalf("seed recipe %q ingredient %q: %v", recipe.DishName, ing.itemName, err)
			}
		}
		log.Printf("recipe %q (%s) -> id %d", recipe.DishName, recipe.OrderType, recipe.ID)
	}

	log.Println("demo dataset loaded")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func days(n int) *int {
	return &n
}

func indexOf(items []models.NewInventoryItem, name string) int {
	for i := range items {
		if items[i].Name == name {
			return i
		}
	}
	return 0
}
