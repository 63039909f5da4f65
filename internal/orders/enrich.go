package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultItemCode       = "N/A"
	defaultDescription    = "Unnamed item"
	defaultDeliveryStatus = "Ready to Pack"
	defaultPriority       = "Normal"
	defaultCategory       = "General"
	defaultQualityGrade   = "Standard"
	notAvailable          = "N/A"
)

// Enrich uzupełnia braki w zamówieniu i wylicza ReconciledStatus.
// Idempotentne: istniejące wartości zostają, dopisywane są tylko luki.
// Nie modyfikuje wejścia.
func Enrich(o Order, overrides Overrides) Order {
	o.ReconciledStatus = Reconcile(o, overrides)

	if o.QuotationItems == nil {
		items := make([]QuotationItem, 0, len(o.Items))
		for _, li := range o.Items {
			items = append(items, quotationFromLineItem(li))
		}
		o.QuotationItems = items
		return o
	}

	items := make([]QuotationItem, len(o.QuotationItems))
	for i, qi := range o.QuotationItems {
		items[i] = fillQuotationGaps(qi)
	}
	o.QuotationItems = items
	return o
}

// EnrichAll to Enrich dla całej listy, kolejność zachowana.
func EnrichAll(list []Order, overrides Overrides) []Order {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		out = append(out, Enrich(o, overrides))
	}
	return out
}

func quotationFromLineItem(li LineItem) QuotationItem {
	return fillQuotationGaps(QuotationItem{
		ItemCode:       firstNonEmpty(li.ItemCode, string(li.ProductID)),
		Description:    firstNonEmpty(li.Description, li.ProductName),
		ItemQty:        int(li.Quantity),
		UnitPrice:      li.UnitPrice,
		TotalAmount:    li.TotalAmount,
		DeliveryStatus: li.DeliveryStatus,
		Priority:       li.Priority,
		VariantDetails: VariantDetails{
			Category:          li.CategoryName,
			Weight:            li.Weight,
			BatchNumber:       li.BatchNumber,
			ExpiryDate:        li.ExpiryDate,
			ManufacturingDate: li.ManufacturingDate,
			Supplier:          li.Supplier,
			QualityGrade:      li.QualityGrade,
			Color:             li.Color,
			Size:              li.Size,
		},
	})
}

func fillQuotationGaps(qi QuotationItem) QuotationItem {
	qi.ItemCode = firstNonEmpty(qi.ItemCode, defaultItemCode)
	qi.Description = firstNonEmpty(qi.Description, defaultDescription)
	if qi.ItemQty < 0 {
		qi.ItemQty = 0
	}

	qty := decimal.NewFromInt(int64(qi.ItemQty))
	if !qi.UnitPrice.Valid {
		unit := decimal.Zero
		if qi.TotalAmount.Valid && qi.ItemQty != 0 {
			unit = qi.TotalAmount.Decimal.Div(qty)
		}
		qi.UnitPrice = decimal.NewNullDecimal(unit)
	}
	if !qi.TotalAmount.Valid {
		qi.TotalAmount = decimal.NewNullDecimal(qi.UnitPrice.Decimal.Mul(qty))
	}

	qi.DeliveryStatus = firstNonEmpty(qi.DeliveryStatus, defaultDeliveryStatus)
	qi.Priority = firstNonEmpty(qi.Priority, defaultPriority)
	qi.VariantDetails = qi.VariantDetails.withDefaults()
	return qi
}

func (v VariantDetails) withDefaults() VariantDetails {
	v.Category = firstNonEmpty(v.Category, defaultCategory)
	v.Weight = firstNonEmpty(v.Weight, notAvailable)
	v.BatchNumber = firstNonEmpty(v.BatchNumber, notAvailable)
	v.ExpiryDate = firstNonEmpty(v.ExpiryDate, notAvailable)
	v.ManufacturingDate = firstNonEmpty(v.ManufacturingDate, notAvailable)
	v.Supplier = firstNonEmpty(v.Supplier, notAvailable)
	v.QualityGrade = firstNonEmpty(v.QualityGrade, defaultQualityGrade)
	v.Color = firstNonEmpty(v.Color, notAvailable)
	v.Size = firstNonEmpty(v.Size, notAvailable)
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
