// internal/orders/types.go
package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Status to uzgodniony (trójstanowy) status zamówienia.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusComplete   Status = "Complete"
)

// ID przyjmuje order_id / product_id zarówno jako string, jak i liczbę.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Count to ilość/licznik z backendu: liczba albo string z liczbą.
// Ułamki są obcinane, śmieci i null dają 0 zamiast błędu całej listy.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*c = 0
	if len(b) == 0 {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	*c = Count(int(f))
	return nil
}

// ItemList to products_json: backend oddaje tablicę albo string z zakodowaną tablicą.
type ItemList []LineItem

func (l *ItemList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" {
			*l = nil
			return nil
		}
		b = []byte(s)
	}
	var items []LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("products_json: %w", err)
	}
	*l = items
	return nil
}

// Order w kształcie z backendu; ReconciledStatus i QuotationItems wypełnia Enrich.
type Order struct {
	ID           ID              `json:"order_id"`
	Status       string          `json:"order_status"`
	NetTotal     decimal.Decimal `json:"total_amount"`
	ProductCount Count           `json:"no_of_products"`
	Items        ItemList        `json:"products_json"`
	CustomerName string          `json:"customer_name,omitempty"`
	OrderDate    string          `json:"order_date,omitempty"`
	CreatedAt    string          `json:"created_at,omitempty"`

	ReconciledStatus Status          `json:"reconciled_status,omitempty"`
	QuotationItems   []QuotationItem `json:"quotation_items,omitempty"`
}

// LineItem to jedna pozycja products_json. Ceny są nullable: brak != zero.
type LineItem struct {
	ProductID    ID                  `json:"product_id"`
	ItemCode     string              `json:"item_code,omitempty"`
	ProductName  string              `json:"product_name"`
	Description  string              `json:"description,omitempty"`
	Quantity     Count               `json:"quantity"`
	UnitPrice    decimal.NullDecimal `json:"unit_price"`
	TotalAmount  decimal.NullDecimal `json:"total_amount"`
	CategoryName string              `json:"category_name,omitempty"`

	DeliveryStatus string `json:"delivery_status,omitempty"`
	Priority       string `json:"priority,omitempty"`

	Weight            string `json:"weight,omitempty"`
	BatchNumber       string `json:"batch_number,omitempty"`
	ExpiryDate        string `json:"expiry_date,omitempty"`
	ManufacturingDate string `json:"manufacturing_date,omitempty"`
	Supplier          string `json:"supplier,omitempty"`
	QualityGrade      string `json:"quality_grade,omitempty"`
	Color             string `json:"color,omitempty"`
	Size              string `json:"size,omitempty"`
}

// QuotationItem to znormalizowana pozycja po Enrich.
type QuotationItem struct {
	ItemCode       string              `json:"item_code"`
	Description    string              `json:"description"`
	ItemQty        int                 `json:"item_qty"`
	UnitPrice      decimal.NullDecimal `json:"unit_price"`
	TotalAmount    decimal.NullDecimal `json:"total_amount"`
	DeliveryStatus string              `json:"delivery_status"`
	Priority       string              `json:"priority"`
	VariantDetails VariantDetails      `json:"variant_details"`
}

type VariantDetails struct {
	Category          string `json:"category"`
	Weight            string `json:"weight"`
	BatchNumber       string `json:"batch_number"`
	ExpiryDate        string `json:"expiry_date"`
	ManufacturingDate string `json:"manufacturing_date"`
	Supplier          string `json:"supplier"`
	QualityGrade      string `json:"quality_grade"`
	Color             string `json:"color"`
	Size              string `json:"size"`
}

// Overrides to migawka lokalnych statusów (order_id -> status).
type Overrides map[string]Status

func (o Overrides) Lookup(orderID string) (Status, bool) {
	if o == nil {
		return "", false
	}
	s, ok := o[orderID]
	return s, ok
}
