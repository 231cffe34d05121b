package orders

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"smoothies/internal"
)

func ExportOrdersToXLSX(rows []internal.OrderRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"id", "name_on_order", "ingredients", "canonical", "canonical_rule",
		"byte_length", "hex", "hash64", "order_filled", "created_at",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.ID)
		set(2, row.NameOnOrder)
		set(3, row.Ingredients)
		set(4, row.Canonical)
		set(5, row.Rule)
		set(6, row.ByteLength)
		set(7, row.Hex)
		// Hashes exceed float64 precision; keep them as text.
		set(8, derefInt64Text(row.Hash64))
		set(9, row.OrderFilled)
		set(10, row.CreatedAt)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefInt64Text(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
