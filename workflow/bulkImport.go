package workflow

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/opsdine/resto_backend/models"
	"github.com/opsdine/resto_backend/utils"
)

var requiredCSVHeaders = []string{
	"item_name",
	"unit_of_measurement",
	"box_or_package_qty",
	"unit_price",
	"ideal_qty",
	"current_qty",
}

// Optional columns: total_price, shelf_life_days, category.

// BulkImportResult reports partial-failure semantics by design: row-level
// errors accumulate while the remaining rows still import.
type BulkImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportCSV ingests inventory rows from a raw CSV string. A missing
// required header aborts the whole upload (ValidationError); a failing
// row is recorded as "Row N: ..." (N counts data rows from 1) and
// skipped.
func (l *InventoryLedger) ImportCSV(ctx context.Context, data string) (*BulkImportResult, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, utils.NewValidationError("data")
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var missing []string
	for _, h := range requiredCSVHeaders {
		if _, ok := columns[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, utils.NewValidationError(missing...)
	}

	result := &BulkImportResult{}
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row, err))
			continue
		}

		input, err := rowToInput(columns, record)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row, err))
			continue
		}
		if _, err := l.Create(ctx, input); err != nil {
			if utils.IsStorageError(err) {
				// backend down: aborting beats misreporting the whole file
				return nil, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

func rowToInput(columns map[string]int, record []string) (*models.NewInventoryItem, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	input := &models.NewInventoryItem{
		Name:     field("item_name"),
		Unit:     field("unit_of_measurement"),
		Category: field("category"),
	}

	var err error
	if input.PackageQty, err = utils.ParseDecimal(field("box_or_package_qty")); err != nil {
		return nil, fmt.Errorf("invalid box_or_package_qty")
	}
	if input.UnitPrice, err = utils.ParseDecimal(field("unit_price")); err != nil {
		return nil, fmt.Errorf("invalid unit_price")
	}
	if input.IdealQty, err = utils.ParseDecimal(field("ideal_qty")); err != nil {
		return nil, fmt.Errorf("invalid ideal_qty")
	}
	if input.CurrentQty, err = utils.ParseDecimal(field("current_qty")); err != nil {
		return nil, fmt.Errorf("invalid current_qty")
	}
	if v := field("total_price"); v != "" {
		if input.TotalPrice, err = utils.ParseDecimal(v); err != nil {
			return nil, fmt.Errorf("invalid total_price")
		}
	}
	if v := field("shelf_life_days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid shelf_life_days")
		}
		input.ShelfLifeDays = &days
	}
	return input, nil
}
