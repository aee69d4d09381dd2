package models

import (
	"strings"
	"time"

	"github.com/opsdine/resto_backend/utils"
	"github.com/shopspring/decimal"
)

// Stock-level buckets derived from current/ideal ratio. Display concern
// only: the low-stock query itself is just current_qty < ideal_qty.
const (
	StockStatusCritical = "critical"
	StockStatusLow      = "low"
	StockStatusGood     = "good"
)

type InventoryItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Name          string          `gorm:"size:100;not null;index" json:"name" binding:"required"`
	Unit          string          `gorm:"size:20;not null" json:"unit"`
	PackageQty    decimal.Decimal `gorm:"type:decimal(20,6);not null;default:1" json:"package_qty"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,6)" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(20,6)" json:"total_price"`
	IdealQty      decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"ideal_qty"`
	CurrentQty    decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0" json:"current_qty"`
	ShelfLifeDays *int            `json:"shelf_life_days,omitempty"`
	Category      string          `gorm:"size:100;index" json:"category"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	// UpdatedAt doubles as the last-stock-update stamp.
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (item *InventoryItem) IsLowStock() bool {
	return item.CurrentQty.LessThan(item.IdealQty)
}

// StockStatus buckets by current/ideal ratio: <=0.25 critical, <=0.5 low,
// else good. Pure function, no side effects.
func (item *InventoryItem) StockStatus() string {
	if item.IdealQty.Sign() <= 0 {
		return StockStatusGood
	}
	ratio := item.CurrentQty.Div(item.IdealQty)
	switch {
	case ratio.LessThanOrEqual(decimal.NewFromFloat(0.25)):
		return StockStatusCritical
	case ratio.LessThanOrEqual(decimal.NewFromFloat(0.5)):
		return StockStatusLow
	default:
		return StockStatusGood
	}
}

type NewInventoryItem struct {
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	PackageQty    decimal.Decimal `json:"package_qty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	IdealQty      decimal.Decimal `json:"ideal_qty"`
	CurrentQty    decimal.Decimal `json:"current_qty"`
	ShelfLifeDays *int            `json:"shelf_life_days"`
	Category      string          `json:"category"`
}

// Validate collects every offending field instead of failing fast.
// total_price is informational and never derived here; callers own
// unit_price x package_qty.
func (input *NewInventoryItem) Validate() error {
	var fields []string
	if len(strings.TrimSpace(input.Name)) < 2 {
		fields = append(fields, "name")
	}
	if strings.TrimSpace(input.Unit) == "" {
		fields = append(fields, "unit")
	}
	if input.PackageQty.LessThan(decimal.NewFromInt(1)) {
		fields = append(fields, "package_qty")
	}
	if input.IdealQty.LessThan(decimal.NewFromInt(1)) {
		fields = append(fields, "ideal_qty")
	}
	if input.CurrentQty.IsNegative() {
		fields = append(fields, "current_qty")
	}
	if len(fields) > 0 {
		return utils.NewValidationError(fields...)
	}
	return nil
}

func (input *NewInventoryItem) Item() *InventoryItem {
	return &InventoryItem{
		Name:          strings.TrimSpace(input.Name),
		Unit:          strings.TrimSpace(input.Unit),
		PackageQty:    input.PackageQty,
		UnitPrice:     input.UnitPrice,
		TotalPrice:    input.TotalPrice,
		IdealQty:      input.IdealQty,
		CurrentQty:    input.CurrentQty,
		ShelfLifeDays: input.ShelfLifeDays,
		Category:      strings.TrimSpace(input.Category),
	}
}

// UpdateInventoryItem is a partial update; nil pointers leave the stored
// value untouched.
type UpdateInventoryItem struct {
	Name          *string          `json:"name"`
	Unit          *string          `json:"unit"`
	PackageQty    *decimal.Decimal `json:"package_qty"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	TotalPrice    *decimal.Decimal `json:"total_price"`
	IdealQty      *decimal.Decimal `json:"ideal_qty"`
	CurrentQty    *decimal.Decimal `json:"current_qty"`
	ShelfLifeDays *int             `json:"shelf_life_days"`
	Category      *string          `json:"category"`
}

func (input *UpdateInventoryItem) Validate() error {
	var fields []string
	if input.Name != nil && len(strings.TrimSpace(*input.Name)) < 2 {
		fields = append(fields, "name")
	}
	if input.Unit != nil && strings.TrimSpace(*input.Unit) == "" {
		fields = append(fields, "unit")
	}
	if input.PackageQty != nil && input.PackageQty.LessThan(decimal.NewFromInt(1)) {
		fields = append(fields, "package_qty")
	}
	if input.IdealQty != nil && input.IdealQty.LessThan(decimal.NewFromInt(1)) {
		fields = append(fields, "ideal_qty")
	}
	if input.CurrentQty != nil && input.CurrentQty.IsNegative() {
		fields = append(fields, "current_qty")
	}
	if len(fields) > 0 {
		return utils.NewValidationError(fields...)
	}
	return nil
}

// Apply copies present fields onto item.
func (input *UpdateInventoryItem) Apply(item *InventoryItem) {
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.PackageQty != nil {
		item.PackageQty = *input.PackageQty
	}
	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	}
	if input.TotalPrice != nil {
		item.TotalPrice = *input.TotalPrice
	}
	if input.IdealQty != nil {
		item.IdealQty = *input.IdealQty
	}
	if input.CurrentQty != nil {
		item.CurrentQty = *input.CurrentQty
	}
	if input.ShelfLifeDays != nil {
		item.ShelfLifeDays = input.ShelfLifeDays
	}
	if input.Category != nil {
		item.Category = strings.TrimSpace(*input.Category)
	}
}

// StockAdjustment is the atomic delta applied by PATCH /inventory/:id/stock
// and by the fulfillment engine (with a negative quantity change).
type StockAdjustment struct {
	QuantityChange decimal.Decimal  `json:"quantityChange"`
	UnitPrice      *decimal.Decimal `json:"unitPrice"`
	TotalPrice     *decimal.Decimal `json:"totalPrice"`
}
