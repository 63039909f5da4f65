// Package export zapisuje statystyki i zamówienia do CSV i XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bartek5186/spicedash/internal/orders"
)

// Report to wszystko, co trafia do eksportu.
type Report struct {
	Stats       orders.DashboardStats
	Orders      []orders.Order // wzbogacone
	GeneratedAt time.Time
}

var (
	itemHeader  = []string{"Code", "Name", "Total Qty", "Variants", "Total Value", "Total Weight (kg)"}
	orderHeader = []string{"Order ID", "Customer", "Status", "Backend Status", "Net Total", "Products", "Items Qty", "Order Date"}
)

// WriteItemsCSV zapisuje podsumowanie pozycji In Progress. Pola są escapowane wg RFC 4180.
func WriteItemsCSV(w io.Writer, stats orders.DashboardStats) error {
	return writeCSV(w, itemHeader, itemRows(stats.ItemSummary))
}

func WriteOrdersCSV(w io.Writer, list []orders.Order) error {
	return writeCSV(w, orderHeader, orderRows(list))
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}

func itemRows(summary []orders.ProductSummaryEntry) [][]string {
	rows := make([][]string, 0, len(summary))
	for _, e := range summary {
		rows = append(rows, []string{
			e.Code,
			e.Name,
			strconv.Itoa(e.TotalQty),
			FormatVariants(e.Variants),
			e.TotalValue.StringFixed(2),
			strconv.FormatFloat(e.TotalWeight, 'f', 2, 64),
		})
	}
	return rows
}

func orderRows(list []orders.Order) [][]string {
	rows := make([][]string, 0, len(list))
	for _, o := range list {
		rows = append(rows, []string{
			string(o.ID),
			o.CustomerName,
			string(o.ReconciledStatus),
			o.Status,
			o.NetTotal.StringFixed(2),
			strconv.Itoa(int(o.ProductCount)),
			strconv.Itoa(itemsQty(o)),
			firstNonEmpty(o.OrderDate, o.CreatedAt),
		})
	}
	return rows
}

func itemsQty(o orders.Order) int {
	n := 0
	for _, qi := range o.QuotationItems {
		n += qi.ItemQty
	}
	return n
}

// FormatVariants: "250g: 3; 500g: 1", klucze posortowane.
func FormatVariants(v map[string]int) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, v[k]))
	}
	return strings.Join(parts, "; ")
}

// FileName buduje nazwę pliku eksportu, np. spicedash_items_20261018_150405.csv
func FileName(kind, ext string, t time.Time) string {
	return fmt.Sprintf("spicedash_%s_%s.%s", kind, t.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// SaveToDir zapisuje plik przez tymczasowy + rename, żeby nie zostawić połówki.
func SaveToDir(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
