package orders

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// ProductSummaryEntry sumuje pozycje jednego produktu z zamówień "In Progress".
type ProductSummaryEntry struct {
	Key         string          `json:"key"`
	Name        string          `json:"name"`
	Code        string          `json:"code"`
	TotalQty    int             `json:"total_qty"`
	Variants    map[string]int  `json:"variants"`
	TotalValue  decimal.Decimal `json:"total_value"`
	TotalWeight float64         `json:"total_weight"`
}

// DashboardStats to dane do kart dashboardu.
type DashboardStats struct {
	TotalOrders      int `json:"total_orders"`
	CompletedOrders  int `json:"completed_orders"`
	PendingOrders    int `json:"pending_orders"`
	InProgressOrders int `json:"in_progress_orders"`

	TotalAmount     decimal.Decimal `json:"total_amount"`
	CompletedValue  decimal.Decimal `json:"completed_value"`
	PendingValue    decimal.Decimal `json:"pending_value"`
	InProgressValue decimal.Decimal `json:"in_progress_value"`

	// tylko zamówienia In Progress
	TotalItems  int                   `json:"total_items"`
	TotalWeight float64               `json:"total_weight"`
	ItemSummary []ProductSummaryEntry `json:"item_summary"`

	CompletionRate int `json:"completion_rate"`
}

// Aggregate składa listę zamówień w statystyki dashboardu.
// Czysta funkcja: bez I/O i bez zegara, dla pustej listy zwraca same zera.
func Aggregate(list []Order, overrides Overrides) DashboardStats {
	stats := DashboardStats{
		TotalAmount:     decimal.Zero,
		CompletedValue:  decimal.Zero,
		PendingValue:    decimal.Zero,
		InProgressValue: decimal.Zero,
		ItemSummary:     []ProductSummaryEntry{},
	}

	summary := make(map[string]*ProductSummaryEntry)
	var seen []string

	for _, raw := range list {
		o := Enrich(raw, overrides)
		stats.TotalOrders++
		stats.TotalAmount = stats.TotalAmount.Add(o.NetTotal)

		switch o.ReconciledStatus {
		case StatusComplete:
			stats.CompletedOrders++
			stats.CompletedValue = stats.CompletedValue.Add(o.NetTotal)
		case StatusInProgress:
			stats.InProgressOrders++
			stats.InProgressValue = stats.InProgressValue.Add(o.NetTotal)
			for _, qi := range o.QuotationItems {
				key := qi.ItemCode + "_" + qi.Description
				e, ok := summary[key]
				if !ok {
					e = &ProductSummaryEntry{
						Key:        key,
						Name:       qi.Description,
						Code:       qi.ItemCode,
						Variants:   map[string]int{},
						TotalValue: decimal.Zero,
					}
					summary[key] = e
					seen = append(seen, key)
				}
				e.TotalQty += qi.ItemQty
				e.TotalValue = e.TotalValue.Add(qi.TotalAmount.Decimal)
				if v, ok := ExtractVariant(qi.Description); ok {
					e.Variants[v] += qi.ItemQty
				}
				w := EstimateWeight(qi.Description, qi.ItemQty)
				e.TotalWeight += w

				stats.TotalItems += qi.ItemQty
				stats.TotalWeight += w
			}
		default:
			stats.PendingOrders++
			stats.PendingValue = stats.PendingValue.Add(o.NetTotal)
		}
	}

	for _, key := range seen {
		stats.ItemSummary = append(stats.ItemSummary, *summary[key])
	}
	sort.SliceStable(stats.ItemSummary, func(i, j int) bool {
		return stats.ItemSummary[i].TotalQty > stats.ItemSummary[j].TotalQty
	})

	if stats.TotalOrders > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedOrders) / float64(stats.TotalOrders) * 100))
	}
	return stats
}

// FilterByStatus zwraca wzbogacone zamówienia o danym uzgodnionym statusie.
func FilterByStatus(enriched []Order, status Status) []Order {
	out := make([]Order, 0, len(enriched))
	for _, o := range enriched {
		if o.ReconciledStatus == status {
			out = append(out, o)
		}
	}
	return out
}
