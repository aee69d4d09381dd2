package models

import (
	"strings"
	"time"

	"github.com/opsdine/resto_backend/utils"
	"github.com/shopspring/decimal"
)

// Order channels. A recipe stored as "both" serves either channel; dish
// name uniqueness is (dish_name, order_type), not global.
const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeaway = "takeaway"
	OrderTypeBoth     = "both"
)

func ValidOrderType(s string) bool {
	switch s {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeBoth:
		return true
	}
	return false
}

type Recipe struct {
	ID           int             `gorm:"primary_key" json:"id"`
	DishName     string          `gorm:"size:100;not null;uniqueIndex:idx_dish_order" json:"dish_name" binding:"required"`
	OrderType    string          `gorm:"size:20;not null;uniqueIndex:idx_dish_order" json:"order_type" binding:"required"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"size:100;index" json:"category"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(20,6)" json:"selling_price"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RecipeItem ties a dish to a required quantity of one inventory item.
// Unit may differ from the inventory item's native unit; no conversion is
// performed (known correctness gap, deliberately preserved).
type RecipeItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	RecipeID         int             `gorm:"not null;index" json:"recipe_id"`
	InventoryItemID  int             `gorm:"not null;index" json:"inventory_item_id"`
	QuantityRequired decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity_required"`
	Unit             string          `gorm:"size:20" json:"unit"`
}

// RecipeIngredient pairs a requirement with the current inventory snapshot
// so callers can compute cost without a second round trip.
type RecipeIngredient struct {
	RecipeItem `gorm:"embedded"`
	ItemName   string          `json:"item_name"`
	ItemUnit   string          `json:"item_unit"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrentQty decimal.Decimal `json:"current_qty"`
	IdealQty   decimal.Decimal `json:"ideal_qty"`
}

// RecipeCost sums unit_price x quantity_required over the ingredient rows.
// Deterministic and independent of iteration order; rows with a
// non-positive requirement carry no cost and are skipped.
func RecipeCost(ingredients []*RecipeIngredient) decimal.Decimal {
	total := decimal.Zero
	for _, ing := range ingredients {
		if ing == nil || ing.QuantityRequired.Sign() <= 0 {
			continue
		}
		total = total.Add(ing.UnitPrice.Mul(ing.QuantityRequired))
	}
	return total
}

type NewRecipe struct {
	DishName     string          `json:"dish_name"`
	OrderType    string          `json:"order_type"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	IsActive     *bool           `json:"is_active"`
}

func (input *NewRecipe) Validate() error {
	var fields []string
	if len(strings.TrimSpace(input.DishName)) < 2 {
		fields = append(fields, "dish_name")
	}
	if !ValidOrderType(input.OrderType) {
		fields = append(fields, "order_type")
	}
	if len(fields) > 0 {
		return utils.NewValidationError(fields...)
	}
	return nil
}

func (input *NewRecipe) Recipe() *Recipe {
	active := input.IsActive
	if active == nil {
		t := true
		active = &t
	}
	return &Recipe{
		DishName:     strings.TrimSpace(input.DishName),
		OrderType:    input.OrderType,
		Description:  input.Description,
		Category:     strings.TrimSpace(input.Category),
		SellingPrice: input.SellingPrice,
		IsActive:     active,
	}
}

type UpdateRecipe struct {
	DishName     *string          `json:"dish_name"`
	OrderType    *string          `json:"order_type"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	IsActive     *bool            `json:"is_active"`
}

func (input *UpdateRecipe) Validate() error {
	var fields []string
	if input.DishName != nil && len(strings.TrimSpace(*input.DishName)) < 2 {
		fields = append(fields, "dish_name")
	}
	if input.OrderType != nil && !ValidOrderType(*input.OrderType) {
		fields = append(fields, "order_type")
	}
	if len(fields) > 0 {
		return utils.NewValidationError(fields...)
	}
	return nil
}

func (input *UpdateRecipe) Apply(recipe *Recipe) {
	if input.DishName != nil {
		recipe.DishName = strings.TrimSpace(*input.DishName)
	}
	if input.OrderType != nil {
		recipe.OrderType = *input.OrderType
	}
	if input.Description != nil {
		recipe.Description = *input.Description
	}
	if input.Category != nil {
		recipe.Category = strings.TrimSpace(*input.Category)
	}
	if input.SellingPrice != nil {
		recipe.SellingPrice = *input.SellingPrice
	}
	if input.IsActive != nil {
		recipe.IsActive = input.IsActive
	}
}

type NewRecipeItem struct {
	InventoryItemID  int             `json:"inventory_item_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Unit             string          `json:"unit"`
}

func (input *NewRecipeItem) Validate() error {
	var fields []string
	if input.InventoryItemID <= 0 {
		fields = append(fields, "inventory_item_id")
	}
	if input.QuantityRequired.Sign() <= 0 {
		fields = append(fields, "quantity_required")
	}
	if len(fields) > 0 {
		return utils.NewValidationError(fields...)
	}
	return nil
}

type UpdateRecipeItem struct {
	QuantityRequired *decimal.Decimal `json:"quantity_required"`
	Unit             *string          `json:"unit"`
}

func (input *UpdateRecipeItem) Validate() error {
	if input.QuantityRequired != nil && input.QuantityRequired.Sign() <= 0 {
		return utils.NewValidationError("quantity_required")
	}
	return nil
}

func (input *UpdateRecipeItem) Apply(item *RecipeItem) {
	if input.QuantityRequired != nil {
		item.QuantityRequired = *input.QuantityRequired
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
}
