package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary = "Summary"
	sheetItems   = "Items"
	sheetOrders  = "Orders"
)

// WriteXLSX zapisuje raport: Summary (karty), Items (pozycje In Progress), Orders.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	s := r.Stats
	summary := [][]any{
		{"Metric", "Value"},
		{"Generated At", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Orders", s.TotalOrders},
		{"Completed Orders", s.CompletedOrders},
		{"In Progress Orders", s.InProgressOrders},
		{"Pending Orders", s.PendingOrders},
		{"Total Amount", s.TotalAmount.InexactFloat64()},
		{"Completed Value", s.CompletedValue.InexactFloat64()},
		{"In Progress Value", s.InProgressValue.InexactFloat64()},
		{"Pending Value", s.PendingValue.InexactFloat64()},
		{"Items To Pack", s.TotalItems},
		{"Total Weight (kg)", s.TotalWeight},
		{"Completion Rate (%)", s.CompletionRate},
	}
	if err := writeSheet(f, sheetSummary, summary, headerStyle); err != nil {
		return err
	}

	items := [][]any{toAny(itemHeader)}
	for _, e := range s.ItemSummary {
		items = append(items, []any{
			e.Code, e.Name, e.TotalQty, FormatVariants(e.Variants),
			e.TotalValue.InexactFloat64(), e.TotalWeight,
		})
	}
	if _, err := f.NewSheet(sheetItems); err != nil {
		return err
	}
	if err := writeSheet(f, sheetItems, items, headerStyle); err != nil {
		return err
	}

	rows := [][]any{toAny(orderHeader)}
	for _, row := range orderRows(r.Orders) {
		rows = append(rows, toAny(row))
	}
	// kwota i ilości jako liczby, nie tekst
	for i, o := range r.Orders {
		rows[i+1][4] = o.NetTotal.InexactFloat64()
		rows[i+1][5] = int(o.ProductCount)
		rows[i+1][6] = itemsQty(o)
	}
	if _, err := f.NewSheet(sheetOrders); err != nil {
		return err
	}
	if err := writeSheet(f, sheetOrders, rows, headerStyle); err != nil {
		return err
	}

	idx, err := f.GetSheetIndex(sheetSummary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	if len(rows) == 0 {
		return nil
	}
	for c := range rows[0] {
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(sheet, col, col, 20)
	}
	last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
