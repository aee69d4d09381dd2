package supastore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
	"github.com/shopspring/decimal"
)

func newTestStore(handler http.HandlerFunc) (*Store, *httptest.Server) {
	srv := httptest.NewServer(handler)
	store := &Store{
		baseURL:    srv.URL,
		apiKey:     "test-key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
	return store, srv
}

func TestInventoryItemMapsColumns(t *testing.T) {
	var gotReq *http.Request
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": 7,
			"item_name": "Mozzarella",
			"unit_of_measurement": "kg",
			"box_or_package_qty": "1",
			"unit_price": "9.50",
			"total_price": "9.50",
			"ideal_qty": "10",
			"current_qty": "4.8",
			"shelf_life_days": 14,
			"category": "dairy"
		}`)
	})
	defer srv.Close()

	item, err := store.InventoryItem(context.Background(), 7)
	if err != nil {
		t.Fatalf("InventoryItem: %v", err)
	}

	if gotReq.URL.Path != "/rest/v1/inventory_items" {
		t.Fatalf("path = %q", gotReq.URL.Path)
	}
	if got := gotReq.URL.Query().Get("id"); got != "eq.7" {
		t.Fatalf("id filter = %q, want eq.7", got)
	}
	if gotReq.Header.Get("apikey") != "test-key" || gotReq.Header.Get("Authorization") != "Bearer test-key" {
		t.Fatalf("auth headers = %q / %q", gotReq.Header.Get("apikey"), gotReq.Header.Get("Authorization"))
	}
	if gotReq.Header.Get("Accept") != "application/vnd.pgrst.object+json" {
		t.Fatalf("Accept = %q, want single-object", gotReq.Header.Get("Accept"))
	}

	if item.ID != 7 || item.Name != "Mozzarella" || item.Unit != "kg" || item.Category != "dairy" {
		t.Fatalf("mapped item = %+v", item)
	}
	if !item.CurrentQty.Equal(decimal.RequireFromString("4.8")) {
		t.Fatalf("CurrentQty = %s, want 4.8", item.CurrentQty)
	}
	if item.ShelfLifeDays == nil || *item.ShelfLifeDays != 14 {
		t.Fatalf("ShelfLifeDays = %v, want 14", item.ShelfLifeDays)
	}
}

func TestInventoryItemZeroRows(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotAcceptable)
		io.WriteString(w, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)
	})
	defer srv.Close()

	_, err := store.InventoryItem(context.Background(), 99)
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("error = %v, want ErrorRecordNotFound", err)
	}
}

func TestAdjustStockRPC(t *testing.T) {
	var gotPath string
	var gotBody map[string]json.RawMessage
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode rpc body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{
			"id": 7,
			"item_name": "Mozzarella",
			"unit_of_measurement": "kg",
			"box_or_package_qty": "1",
			"unit_price": "9.50",
			"total_price": "9.50",
			"ideal_qty": "10",
			"current_qty": "4.8"
		}]`)
	})
	defer srv.Close()

	item, err := store.AdjustStock(context.Background(), 7, &models.StockAdjustment{
		QuantityChange: decimal.RequireFromString("-0.2"),
	})
	if err != nil {
		t.Fatalf("AdjustStock: %v", err)
	}
	if gotPath != "/rest/v1/rpc/adjust_inventory_stock" {
		t.Fatalf("rpc path = %q", gotPath)
	}
	if string(gotBody["p_item_id"]) != "7" {
		t.Fatalf("p_item_id = %s", gotBody["p_item_id"])
	}
	if string(gotBody["p_delta"]) != `"-0.2"` {
		t.Fatalf("p_delta = %s, want quoted decimal", gotBody["p_delta"])
	}
	if _, ok := gotBody["p_unit_price"]; ok {
		t.Fatal("p_unit_price sent without a price update")
	}
	if !item.CurrentQty.Equal(decimal.RequireFromString("4.8")) {
		t.Fatalf("CurrentQty = %s, want 4.8", item.CurrentQty)
	}
}

func TestAdjustStockInsufficient(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":"P0001","message":"Insufficient stock for item 7"}`)
	})
	defer srv.Close()

	_, err := store.AdjustStock(context.Background(), 7, &models.StockAdjustment{
		QuantityChange: decimal.RequireFromString("-50"),
	})
	if !errors.Is(err, utils.ErrorInsufficientStock) {
		t.Fatalf("error = %v, want ErrorInsufficientStock", err)
	}
}

func TestCreateInventoryItemRoundTrip(t *testing.T) {
	var gotPrefer string
	var gotPayload map[string]any
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `[{
			"id": 12,
			"item_name": "Basil",
			"unit_of_measurement": "g",
			"box_or_package_qty": "100",
			"unit_price": "0.04",
			"total_price": "4",
			"ideal_qty": "500",
			"current_qty": "120",
			"category": "herbs"
		}]`)
	})
	defer srv.Close()

	item := &models.InventoryItem{
		Name:       "Basil",
		Unit:       "g",
		PackageQty: decimal.RequireFromString("100"),
		UnitPrice:  decimal.RequireFromString("0.04"),
		TotalPrice: decimal.RequireFromString("4"),
		IdealQty:   decimal.RequireFromString("500"),
		CurrentQty: decimal.RequireFromString("120"),
		Category:   "herbs",
	}
	if err := store.CreateInventoryItem(context.Background(), item); err != nil {
		t.Fatalf("CreateInventoryItem: %v", err)
	}

	if gotPrefer != "return=representation" {
		t.Fatalf("Prefer = %q", gotPrefer)
	}
	if gotPayload["item_name"] != "Basil" || gotPayload["unit_of_measurement"] != "g" {
		t.Fatalf("payload = %+v, want service column names", gotPayload)
	}
	if item.ID != 12 {
		t.Fatalf("assigned id = %d, want 12", item.ID)
	}
}

func TestTransportFailureIsStorageError(t *testing.T) {
	store, srv := newTestStore(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"code":"XX000","message":"internal error"}`)
	})
	defer srv.Close()

	_, err := store.InventoryItems(context.Background())
	if !utils.IsStorageError(err) {
		t.Fatalf("error = %v, want StorageError", err)
	}
}
