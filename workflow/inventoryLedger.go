package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opsdine/resto_backend/config"
	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/storage"
)

const (
	lowStockCacheKey = "cache:lowstock"
	lowStockCacheTTL = 15 * time.Second
)

// InventoryLedger owns InventoryItem records. Input validation happens at
// this boundary, before touching storage; the atomicity of AdjustStock is
// the store's contract.
type InventoryLedger struct {
	store storage.Store
}

func NewInventoryLedger(store storage.Store) *InventoryLedger {
	return &InventoryLedger{store: store}
}

func (l *InventoryLedger) List(ctx context.Context) ([]*models.InventoryItem, error) {
	return l.store.InventoryItems(ctx)
}

func (l *InventoryLedger) ListByCategory(ctx context.Context, category string) ([]*models.InventoryItem, error) {
	return l.store.InventoryItemsByCategory(ctx, category)
}

// LowStock returns items with current_qty < ideal_qty. The critical/low
// bucketing on top of this is display-only (models.InventoryItem.StockStatus).
// The report is cached briefly in redis when one is configured; every
// inventory write invalidates it.
func (l *InventoryLedger) LowStock(ctx context.Context) ([]*models.InventoryItem, error) {
	if cached, ok, err := config.GetRedisValue(lowStockCacheKey); err == nil && ok {
		var items []*models.InventoryItem
		if json.Unmarshal([]byte(cached), &items) == nil {
			return items, nil
		}
	}
	items, err := l.store.LowStockItems(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(items); err == nil {
		_ = config.SetRedisValue(lowStockCacheKey, string(payload), lowStockCacheTTL)
	}
	return items, nil
}

func (l *InventoryLedger) Get(ctx context.Context, id int) (*models.InventoryItem, error) {
	return l.store.InventoryItem(ctx, id)
}

func (l *InventoryLedger) Create(ctx context.Context, input *models.NewInventoryItem) (*models.InventoryItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	item := input.Item()
	if err := l.store.CreateInventoryItem(ctx, item); err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(lowStockCacheKey)
	return item, nil
}

func (l *InventoryLedger) Update(ctx context.Context, id int, input *models.UpdateInventoryItem) (*models.InventoryItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	item, err := l.store.UpdateInventoryItem(ctx, id, input)
	if err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(lowStockCacheKey)
	return item, nil
}

// AdjustStock sets current_qty += quantity_change (the delta may be
// negative), optionally overwrites the price fields, and stamps the
// last-updated time. The only mutation path that must stay safe under
// concurrent callers.
func (l *InventoryLedger) AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.InventoryItem, error) {
	item, err := l.store.AdjustStock(ctx, id, adj)
	if err != nil {
		return nil, err
	}
	_ = config.RemoveRedisKey(lowStockCacheKey)
	return item, nil
}
