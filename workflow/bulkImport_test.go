package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/opsdine/resto_backend/storage/memstore"
	"github.com/opsdine/resto_backend/utils"
)

func TestImportCSVSkipsBadRowsAndImportsRest(t *testing.T) {
	store := memstore.New()
	ledger := NewInventoryLedger(store)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"item_name,unit_of_measurement,box_or_package_qty,unit_price,ideal_qty,current_qty,category",
		"Mozzarella,kg,1,9.50,10,5,dairy",
		"Basil,g,100,0.04,500,-1,herbs",
		"Olive Oil,l,1,11.00,6,6,pantry",
	}, "\n")

	result, err := ledger.ImportCSV(ctx, csvData)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("Imported = %d, want 2", result.Imported)
	}
	if len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "Row 2:") {
		t.Fatalf("Errors = %v, want one error for Row 2", result.Errors)
	}

	items, err := store.InventoryItems(ctx)
	if err != nil {
		t.Fatalf("InventoryItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("stored items = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Name == "Basil" {
			t.Fatal("rejected row was stored anyway")
		}
	}
}

func TestImportCSVMissingHeaderAborts(t *testing.T) {
	ledger := NewInventoryLedger(memstore.New())

	csvData := strings.Join([]string{
		"item_name,unit_of_measurement,unit_price,ideal_qty,current_qty",
		"Mozzarella,kg,9.50,10,5",
	}, "\n")

	_, err := ledger.ImportCSV(context.Background(), csvData)
	if !utils.IsValidationError(err) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if !strings.Contains(err.Error(), "box_or_package_qty") {
		t.Fatalf("error %q does not name the missing header", err)
	}
}

func TestImportCSVToleratesFormattedNumbers(t *testing.T) {
	store := memstore.New()
	ledger := NewInventoryLedger(store)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"item_name,unit_of_measurement,box_or_package_qty,unit_price,total_price,ideal_qty,current_qty,shelf_life_days",
		`Rice,kg,25,"1,200","30,000",100,80,365`,
	}, "\n")

	result, err := ledger.ImportCSV(ctx, csvData)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if result.Imported != 1 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v, want one clean import", result)
	}

	items, err := store.InventoryItems(ctx)
	if err != nil {
		t.Fatalf("InventoryItems: %v", err)
	}
	item := items[0]
	if !item.UnitPrice.Equal(dec(t, "1200")) || !item.TotalPrice.Equal(dec(t, "30000")) {
		t.Fatalf("prices = %s / %s, want 1200 / 30000", item.UnitPrice, item.TotalPrice)
	}
	if item.ShelfLifeDays == nil || *item.ShelfLifeDays != 365 {
		t.Fatalf("ShelfLifeDays = %v, want 365", item.ShelfLifeDays)
	}
}

func TestImportCSVRejectsUnparsableNumbers(t *testing.T) {
	ledger := NewInventoryLedger(memstore.New())

	csvData := strings.Join([]string{
		"item_name,unit_of_measurement,box_or_package_qty,unit_price,ideal_qty,current_qty",
		"Mozzarella,kg,1,not-a-price,10,5",
	}, "\n")

	result, err := ledger.ImportCSV(context.Background(), csvData)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if result.Imported != 0 {
		t.Fatalf("Imported = %d, want 0", result.Imported)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "invalid unit_price") {
		t.Fatalf("Errors = %v, want invalid unit_price for Row 1", result.Errors)
	}
}
