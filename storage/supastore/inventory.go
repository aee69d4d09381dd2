package supastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
	"github.com/shopspring/decimal"
)

// inventoryRow mirrors the hosted inventory_items table. Column names are
// the service's, not the domain's; mapping happens only here.
type inventoryRow struct {
	ID                int             `json:"id"`
	ItemName          string          `json:"item_name"`
	UnitOfMeasurement string          `json:"unit_of_measurement"`
	BoxOrPackageQty   decimal.Decimal `json:"box_or_package_qty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	IdealQty          decimal.Decimal `json:"ideal_qty"`
	CurrentQty        decimal.Decimal `json:"current_qty"`
	ShelfLifeDays     *int            `json:"shelf_life_days"`
	Category          *string         `json:"category"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (row *inventoryRow) toItem() *models.InventoryItem {
	item := &models.InventoryItem{
		ID:            row.ID,
		Name:          row.ItemName,
		Unit:          row.UnitOfMeasurement,
		PackageQty:    row.BoxOrPackageQty,
		UnitPrice:     row.UnitPrice,
		TotalPrice:    row.TotalPrice,
		IdealQty:      row.IdealQty,
		CurrentQty:    row.CurrentQty,
		ShelfLifeDays: row.ShelfLifeDays,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Category != nil {
		item.Category = *row.Category
	}
	return item
}

func itemPayload(item *models.InventoryItem) map[string]any {
	payload := map[string]any{
		"item_name":           item.Name,
		"unit_of_measurement": item.Unit,
		"box_or_package_qty":  item.PackageQty,
		"unit_price":          item.UnitPrice,
		"total_price":         item.TotalPrice,
		"ideal_qty":           item.IdealQty,
		"current_qty":         item.CurrentQty,
	}
	if item.ShelfLifeDays != nil {
		payload["shelf_life_days"] = *item.ShelfLifeDays
	}
	if item.Category != "" {
		payload["category"] = item.Category
	}
	return payload
}

func updatePayload(input *models.UpdateInventoryItem) map[string]any {
	payload := map[string]any{}
	if input.Name != nil {
		payload["item_name"] = *input.Name
	}
	if input.Unit != nil {
		payload["unit_of_measurement"] = *input.Unit
	}
	if input.PackageQty != nil {
		payload["box_or_package_qty"] = *input.PackageQty
	}
	if input.UnitPrice != nil {
		payload["unit_price"] = *input.UnitPrice
	}
	if input.TotalPrice != nil {
		payload["total_price"] = *input.TotalPrice
	}
	if input.IdealQty != nil {
		payload["ideal_qty"] = *input.IdealQty
	}
	if input.CurrentQty != nil {
		payload["current_qty"] = *input.CurrentQty
	}
	if input.ShelfLifeDays != nil {
		payload["shelf_life_days"] = *input.ShelfLifeDays
	}
	if input.Category != nil {
		payload["category"] = *input.Category
	}
	return payload
}

func (s *Store) listInventory(ctx context.Context, query url.Values) ([]*models.InventoryItem, error) {
	query.Set("order", "id.asc")
	raw, err := s.do(ctx, http.MethodGet, "/inventory_items", query, nil, "")
	if err != nil {
		return nil, err
	}
	var rows []inventoryRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode inventory rows", err)
	}
	items := make([]*models.InventoryItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toItem())
	}
	return items, nil
}

func (s *Store) InventoryItems(ctx context.Context) ([]*models.InventoryItem, error) {
	return s.listInventory(ctx, url.Values{})
}

func (s *Store) InventoryItemsByCategory(ctx context.Context, category string) ([]*models.InventoryItem, error) {
	return s.listInventory(ctx, url.Values{"category": {eq(category)}})
}

func (s *Store) LowStockItems(ctx context.Context) ([]*models.InventoryItem, error) {
	// column-to-column comparison needs the service's computed filter
	return s.listInventory(ctx, url.Values{"is_low_stock": {"eq.true"}})
}

func (s *Store) InventoryItem(ctx context.Context, id int) (*models.InventoryItem, error) {
	raw, err := s.single(ctx, "/inventory_items", url.Values{"id": {eq(id)}})
	if err != nil {
		return nil, err
	}
	var row inventoryRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, utils.NewStorageError("decode inventory row", err)
	}
	return row.toItem(), nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, item *models.InventoryItem) error {
	raw, err := s.do(ctx, http.MethodPost, "/inventory_items", nil, itemPayload(item), "return=representation")
	if err != nil {
		return err
	}
	var rows []inventoryRow
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return utils.NewStorageError("decode created inventory row", err)
	}
	*item = *rows[0].toItem()
	return nil
}

func (s *Store) UpdateInventoryItem(ctx context.Context, id int, input *models.UpdateInventoryItem) (*models.InventoryItem, error) {
	payload := updatePayload(input)
	if len(payload) == 0 {
		return s.InventoryItem(ctx, id)
	}
	raw, err := s.do(ctx, http.MethodPatch, "/inventory_items", url.Values{"id": {eq(id)}}, payload, "return=representation")
	if err != nil {
		return nil, err
	}
	var rows []inventoryRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, utils.NewStorageError("decode updated inventory row", err)
	}
	if len(rows) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return rows[0].toItem(), nil
}

// AdjustStock calls a server-side function so the increment is atomic on
// the hosted side; the function guards current_qty + delta >= 0 and
// raises "insufficient stock" otherwise (mapped in do()).
func (s *Store) AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.InventoryItem, error) {
	args := map[string]any{
		"p_item_id": id,
		"p_delta":   adj.QuantityChange,
	}
	if adj.UnitPrice != nil {
		args["p_unit_price"] = *adj.UnitPrice
	}
	if adj.TotalPrice != nil {
		args["p_total_price"] = *adj.TotalPrice
	}
	raw, err := s.do(ctx, http.MethodPost, "/rpc/adjust_inventory_stock", nil, args, "")
	if err != nil {
		return nil, err
	}
	var rows []inventoryRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		// some deployments return a single object from the function
		var row inventoryRow
		if err2 := json.Unmarshal(raw, &row); err2 != nil {
			return nil, utils.NewStorageError("decode adjusted inventory row", err)
		}
		return row.toItem(), nil
	}
	if len(rows) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return rows[0].toItem(), nil
}
