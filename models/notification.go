package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	NotificationTypeLowStock          = "low_stock"
	NotificationTypeOrderFulfilled    = "order_fulfilled"
	NotificationTypeFulfillmentFailed = "fulfillment_failed"
)

// Notification rows are created by event producers (the fulfillment
// engine, mainly) and later marked read by the UI. Never hard-deleted.
// UserID nil means broadcast.
type Notification struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Type      string          `gorm:"size:50;not null;index" json:"type"`
	Message   string          `gorm:"type:text;not null" json:"message"`
	Details   json.RawMessage `gorm:"type:text" json:"details,omitempty"`
	IsRead    *bool           `gorm:"not null;default:false" json:"is_read"`
	UserID    *int            `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// LowStockDetails is the structured payload of a low_stock notification.
type LowStockDetails struct {
	ItemID     int             `json:"item_id"`
	ItemName   string          `json:"item_name"`
	Unit       string          `json:"unit"`
	CurrentQty decimal.Decimal `json:"current_qty"`
	IdealQty   decimal.Decimal `json:"ideal_qty"`
	Status     string          `json:"status"`
}
