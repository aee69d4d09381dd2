package workflow

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders the current inventory as a spreadsheet for the
// back-office. Caller owns writing/closing the file.
func (l *InventoryLedger) ExportXLSX(ctx context.Context) (*excelize.File, error) {
	items, err := l.List(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"ID", "Name", "Unit", "PackageQty", "UnitPrice", "TotalPrice", "IdealQty", "CurrentQty", "ShelfLifeDays", "Category", "Status", "LastUpdated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, item := range items {
		values := []interface{}{
			item.ID,
			item.Name,
			item.Unit,
			item.PackageQty.String(),
			item.UnitPrice.String(),
			item.TotalPrice.String(),
			item.IdealQty.String(),
			item.CurrentQty.String(),
			"",
			item.Category,
			item.StockStatus(),
			item.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if item.ShelfLifeDays != nil {
			values[8] = *item.ShelfLifeDays
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return nil, fmt.Errorf("format export sheet: %w", err)
	}
	return f, nil
}
