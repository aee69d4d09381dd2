package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/opsdine/resto_backend/appctx"
	"github.com/opsdine/resto_backend/config"
	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	notificationChannel = "notifications"

	// One low-stock alert per item per window; concurrent fulfillments
	// racing on the same ingredient would otherwise emit duplicates.
	lowStockDedupeTTL = 15 * time.Minute
)

// Dispatcher persists notifications through the store and broadcasts them
// on a redis channel when one is configured. Redis is best-effort: the
// stored row is the source of truth, the broadcast only wakes up the UI.
type Dispatcher struct {
	store  storage.Store
	rdb    *redis.Client
	locker *redislock.Client
	logger *logrus.Logger
}

func NewDispatcher(store storage.Store, rdb *redis.Client, locker *redislock.Client, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{store: store, rdb: rdb, locker: locker, logger: logger}
}

func (d *Dispatcher) Dispatch(ctx context.Context, n *models.Notification) error {
	// Order outcomes are addressed to the caller when the request carried
	// an identity; stock alerts always broadcast.
	if n.UserID == nil && n.Type != models.NotificationTypeLowStock {
		if uid, ok := appctx.GetInt(ctx, appctx.ContextKeyUserId); ok {
			n.UserID = &uid
		}
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		return err
	}
	if d.rdb != nil {
		if err := config.PublishRedisObject(ctx, notificationChannel, n); err != nil {
			config.LogError(d.logger, "workflow", "Dispatch", "PublishRedisObject", n.Type, err)
		}
	}
	return nil
}

// LowStockAlert emits a low_stock notification for item unless one was
// already emitted within the dedupe window.
func (d *Dispatcher) LowStockAlert(ctx context.Context, item *models.InventoryItem) {
	if d.locker != nil {
		key := fmt.Sprintf("lowstock:item:%d", item.ID)
		// The lock is deliberately never released: its TTL is the window.
		_, err := d.locker.Obtain(ctx, key, lowStockDedupeTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			return
		}
		if err != nil {
			config.LogError(d.logger, "workflow", "LowStockAlert", "Obtain", item.ID, err)
		}
	}

	details, err := json.Marshal(models.LowStockDetails{
		ItemID:     item.ID,
		ItemName:   item.Name,
		Unit:       item.Unit,
		CurrentQty: item.CurrentQty,
		IdealQty:   item.IdealQty,
		Status:     item.StockStatus(),
	})
	if err != nil {
		config.LogError(d.logger, "workflow", "LowStockAlert", "Marshal", item.ID, err)
		return
	}

	n := &models.Notification{
		Type:    models.NotificationTypeLowStock,
		Message: fmt.Sprintf("%s is running low: %s %s left (ideal %s)", item.Name, item.CurrentQty, item.Unit, item.IdealQty),
		Details: details,
	}
	if err := d.Dispatch(ctx, n); err != nil {
		config.LogError(d.logger, "workflow", "LowStockAlert", "Dispatch", item.ID, err)
	}
}

// FulfillmentFailed records a partially-applied fulfillment so an operator
// can reconcile the listed deductions by hand.
func (d *Dispatcher) FulfillmentFailed(ctx context.Context, result *FulfillmentResult) {
	details, err := json.Marshal(result)
	if err != nil {
		config.LogError(d.logger, "workflow", "FulfillmentFailed", "Marshal", result.RecipeID, err)
		return
	}
	n := &models.Notification{
		Type:    models.NotificationTypeFulfillmentFailed,
		Message: fmt.Sprintf("fulfillment of %q (%s) failed after %d of its ingredients were deducted", result.DishName, result.OrderType, len(result.Applied)),
		Details: details,
	}
	if err := d.Dispatch(ctx, n); err != nil {
		config.LogError(d.logger, "workflow", "FulfillmentFailed", "Dispatch", result.RecipeID, err)
	}
}

// OrderFulfilled announces a successful fulfillment on the feed.
func (d *Dispatcher) OrderFulfilled(ctx context.Context, result *FulfillmentResult) {
	details, err := json.Marshal(result)
	if err != nil {
		config.LogError(d.logger, "workflow", "OrderFulfilled", "Marshal", result.RecipeID, err)
		return
	}
	n := &models.Notification{
		Type:    models.NotificationTypeOrderFulfilled,
		Message: fmt.Sprintf("%q (%s) fulfilled; %d ingredients deducted", result.DishName, result.OrderType, len(result.Applied)),
		Details: details,
	}
	if err := d.Dispatch(ctx, n); err != nil {
		config.LogError(d.logger, "workflow", "OrderFulfilled", "Dispatch", result.RecipeID, err)
	}
}
