package orders

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

// ===========================================
// Reconcile
// ===========================================

func TestReconcile_BackendStatuses(t *testing.T) {
	cases := map[string]Status{
		"completed":   StatusComplete,
		"COMPLETED":   StatusComplete,
		"Delivered":   StatusComplete,
		"inprogress":  StatusInProgress,
		"InProgress":  StatusInProgress,
		"in_progress": StatusInProgress,
		"pending":     StatusPending,
		"cancelled":   StatusPending,
		"":            StatusPending,
	}
	for raw, want := range cases {
		got := Reconcile(Order{ID: "1", Status: raw}, nil)
		assert.Equal(t, want, got, "status %q", raw)
	}
}

func TestReconcile_OverrideWins(t *testing.T) {
	o := Order{ID: "42", Status: "pending"}
	overrides := Overrides{"42": StatusComplete}

	assert.Equal(t, StatusComplete, Reconcile(o, overrides))
	assert.Equal(t, StatusPending, Reconcile(Order{ID: "43", Status: "pending"}, overrides))
}

func TestReconcile_NonCompleteOverrideIgnored(t *testing.T) {
	o := Order{ID: "7", Status: "completed"}
	assert.Equal(t, StatusComplete, Reconcile(o, Overrides{"7": StatusPending}))

	o = Order{ID: "8", Status: "inprogress"}
	assert.Equal(t, StatusInProgress, Reconcile(o, Overrides{"8": StatusPending}))
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("Complete")
	assert.True(t, ok)
	assert.Equal(t, StatusComplete, s)

	s, ok = ParseStatus("in progress")
	assert.True(t, ok)
	assert.Equal(t, StatusInProgress, s)

	_, ok = ParseStatus("shipped")
	assert.False(t, ok)
}

// ===========================================
// ExtractVariant
// ===========================================

func TestExtractVariant_Table(t *testing.T) {
	v, ok := ExtractVariant("Face Cream 250g")
	assert.True(t, ok)
	assert.Equal(t, "250g", v)

	v, ok = ExtractVariant("T-Shirt - Ocean Blue")
	assert.True(t, ok)
	assert.Equal(t, "Ocean Blue", v)

	_, ok = ExtractVariant("Plain Widget")
	assert.False(t, ok)
}

func TestExtractVariant_CombinedTokens(t *testing.T) {
	v, ok := ExtractVariant("Turmeric Large 500g")
	assert.True(t, ok)
	assert.Equal(t, "500g Large", v)

	v, ok = ExtractVariant("Olive Oil 1 l - Extra Virgin")
	assert.True(t, ok)
	assert.Equal(t, "1 l Extra Virgin", v)

	v, ok = ExtractVariant("Gift Box - Large")
	assert.True(t, ok)
	assert.Equal(t, "Large", v)
}

func TestExtractVariant_TrailingPunctuation(t *testing.T) {
	v, ok := ExtractVariant("Pepper Large.")
	assert.True(t, ok)
	assert.Equal(t, "Large", v)

	v, ok = ExtractVariant("Chili Small; hot")
	assert.True(t, ok)
	assert.Equal(t, "Small", v)

	v, ok = ExtractVariant("Apron: M!")
	assert.True(t, ok)
	assert.Equal(t, "M", v)

	_, ok = ExtractVariant("U.S. Blend")
	assert.False(t, ok)
}

func TestExtractVariant_LongDashSegmentDropped(t *testing.T) {
	_, ok := ExtractVariant("Spice Set - Assorted Seasonal Favourites")
	assert.False(t, ok)
}

func TestExtractVariant_EmptyAndOdd(t *testing.T) {
	_, ok := ExtractVariant("")
	assert.False(t, ok)
	_, ok = ExtractVariant("   ")
	assert.False(t, ok)
	_, ok = ExtractVariant(" - ")
	assert.False(t, ok)
	_, ok = ExtractVariant("Men's Balm")
	assert.False(t, ok)
}

// ===========================================
// EstimateWeight
// ===========================================

func TestEstimateWeight_Table(t *testing.T) {
	assert.InDelta(t, 0.10, EstimateWeight("Night Serum", 2), 1e-9)
	assert.InDelta(t, 1.5, EstimateWeight("Spice Mix 500g", 3), 1e-9)
}

func TestEstimateWeight_Rules(t *testing.T) {
	assert.InDelta(t, 0.1, EstimateWeight("Cardamom Pods", 1), 1e-9)
	assert.InDelta(t, 0.04, EstimateWeight("Red LIPSTICK", 2), 1e-9)
	assert.InDelta(t, 0.15, EstimateWeight("Eyeshadow Palette", 1), 1e-9)
	assert.InDelta(t, 0.25, EstimateWeight("Body Cream 250g", 1), 1e-9)
	assert.InDelta(t, 2.0, EstimateWeight("Black Pepper 1kg", 2), 1e-9)
}

func TestEstimateWeight_ExplicitWeightNeedsDigitBoundary(t *testing.T) {
	assert.InDelta(t, 0.1, EstimateWeight("Bulk Paprika 2500g", 1), 1e-9)
	assert.InDelta(t, 0.1, EstimateWeight("Cumin 1250g", 1), 1e-9)
	assert.InDelta(t, 0.1, EstimateWeight("Sea Salt 11kg", 1), 1e-9)
	assert.InDelta(t, 0.1, EstimateWeight("Pepper 1.250g", 1), 1e-9)
	assert.InDelta(t, 0.25, EstimateWeight("Mix (250g)", 1), 1e-9)
	assert.InDelta(t, 0.5, EstimateWeight("500g Chili", 1), 1e-9)
	assert.InDelta(t, 0.25, EstimateWeight("Garlic 250grams", 1), 1e-9)
}

func TestEstimateWeight_NonPositiveQuantity(t *testing.T) {
	assert.Equal(t, 0.0, EstimateWeight("Spice Mix 500g", 0))
	assert.Equal(t, 0.0, EstimateWeight("Spice Mix 500g", -3))
}

// ===========================================
// Enrich
// ===========================================

func TestEnrich_DerivesQuotationItems(t *testing.T) {
	o := Order{
		ID:     "A1",
		Status: "inprogress",
		Items: ItemList{
			{ProductID: "P1", ProductName: "Chili Powder 250g", Quantity: 2, TotalAmount: nullDec("100")},
			{ProductID: "P2", ProductName: "Saffron", Quantity: 3, UnitPrice: nullDec("10"), CategoryName: "Premium", Color: "Red"},
			{},
		},
	}

	e := Enrich(o, nil)

	assert.Equal(t, StatusInProgress, e.ReconciledStatus)
	require.Len(t, e.QuotationItems, 3)

	first := e.QuotationItems[0]
	assert.Equal(t, "P1", first.ItemCode)
	assert.Equal(t, "Chili Powder 250g", first.Description)
	assert.True(t, first.UnitPrice.Decimal.Equal(dec("50")))
	assert.True(t, first.TotalAmount.Decimal.Equal(dec("100")))
	assert.Equal(t, "Ready to Pack", first.DeliveryStatus)
	assert.Equal(t, "Normal", first.Priority)
	assert.Equal(t, "General", first.VariantDetails.Category)
	assert.Equal(t, "Standard", first.VariantDetails.QualityGrade)
	assert.Equal(t, "N/A", first.VariantDetails.BatchNumber)

	second := e.QuotationItems[1]
	assert.True(t, second.TotalAmount.Decimal.Equal(dec("30")))
	assert.Equal(t, "Premium", second.VariantDetails.Category)
	assert.Equal(t, "Red", second.VariantDetails.Color)
	assert.Equal(t, "N/A", second.VariantDetails.Size)

	empty := e.QuotationItems[2]
	assert.Equal(t, "N/A", empty.ItemCode)
	assert.Equal(t, "Unnamed item", empty.Description)
	assert.True(t, empty.UnitPrice.Valid)
	assert.True(t, empty.UnitPrice.Decimal.IsZero())
	assert.True(t, empty.TotalAmount.Decimal.IsZero())
}

func TestEnrich_ZeroQuantityKeepsZeroUnitPrice(t *testing.T) {
	e := Enrich(Order{Items: ItemList{{ProductName: "Clove", TotalAmount: nullDec("12")}}}, nil)
	require.Len(t, e.QuotationItems, 1)
	assert.True(t, e.QuotationItems[0].UnitPrice.Decimal.IsZero())
	assert.True(t, e.QuotationItems[0].TotalAmount.Decimal.Equal(dec("12")))
}

func TestEnrich_Idempotent(t *testing.T) {
	inputs := []Order{
		{},
		{ID: "1", Status: "pending"},
		{ID: "2", Status: "inprogress", NetTotal: dec("99.5"), Items: ItemList{
			{ProductID: "X", ProductName: "Cumin 100g", Quantity: 3, TotalAmount: nullDec("33.33")},
			{ProductName: "Mystery", Quantity: -1},
		}},
		{ID: "3", QuotationItems: []QuotationItem{{ItemCode: "Q", ItemQty: 2, UnitPrice: nullDec("4")}}},
	}
	overrides := Overrides{"1": StatusComplete}

	for _, o := range inputs {
		once := Enrich(o, overrides)
		twice := Enrich(once, overrides)
		assert.Equal(t, once, twice, "order %q", o.ID)
	}
}

func TestEnrich_KeepsPresentQuotationValues(t *testing.T) {
	o := Order{QuotationItems: []QuotationItem{{
		ItemCode:       "K1",
		Description:    "Garam Masala",
		ItemQty:        2,
		UnitPrice:      nullDec("5"),
		TotalAmount:    nullDec("11"),
		DeliveryStatus: "Packed",
		Priority:       "High",
	}}}

	e := Enrich(o, nil)

	qi := e.QuotationItems[0]
	assert.True(t, qi.TotalAmount.Decimal.Equal(dec("11")))
	assert.Equal(t, "Packed", qi.DeliveryStatus)
	assert.Equal(t, "High", qi.Priority)
	assert.Equal(t, "General", qi.VariantDetails.Category)
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	in := Order{QuotationItems: []QuotationItem{{ItemQty: 1}}}
	_ = Enrich(in, nil)
	assert.Equal(t, "", in.QuotationItems[0].ItemCode)
	assert.False(t, in.QuotationItems[0].UnitPrice.Valid)
}

// ===========================================
// Aggregate
// ===========================================

func scenarioOrders() []Order {
	return []Order{
		{ID: "A", Status: "completed", NetTotal: dec("100"), Items: ItemList{
			{ProductID: "S1", ProductName: "Paprika", Quantity: 2, TotalAmount: nullDec("100")},
		}},
		{ID: "B", Status: "inprogress", NetTotal: dec("400"), Items: ItemList{
			{ProductID: "S2", ProductName: "Chili Powder 250g", Quantity: 4, TotalAmount: nullDec("400")},
		}},
		{ID: "C", Status: "pending", NetTotal: dec("0")},
	}
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	stats := Aggregate(scenarioOrders(), Overrides{})

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.InProgressOrders)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 33, stats.CompletionRate)
	assert.True(t, stats.TotalAmount.Equal(dec("500")))
	assert.True(t, stats.InProgressValue.Equal(dec("400")))
	assert.Equal(t, 4, stats.TotalItems)
	assert.InDelta(t, 1.0, stats.TotalWeight, 1e-9)

	require.Len(t, stats.ItemSummary, 1)
	entry := stats.ItemSummary[0]
	assert.Equal(t, "S2_Chili Powder 250g", entry.Key)
	assert.Equal(t, 4, entry.TotalQty)
	assert.Equal(t, map[string]int{"250g": 4}, entry.Variants)
	assert.True(t, entry.TotalValue.Equal(dec("400")))
}

func TestAggregate_EmptyInput(t *testing.T) {
	for _, in := range [][]Order{nil, {}} {
		stats := Aggregate(in, nil)
		assert.Equal(t, 0, stats.TotalOrders)
		assert.Equal(t, 0, stats.CompletionRate)
		assert.Equal(t, 0, stats.TotalItems)
		assert.True(t, stats.TotalAmount.IsZero())
		assert.NotNil(t, stats.ItemSummary)
		assert.Empty(t, stats.ItemSummary)
	}
}

func TestAggregate_AllCompleteRate(t *testing.T) {
	list := []Order{
		{ID: "1", Status: "completed"},
		{ID: "2", Status: "delivered"},
		{ID: "3", Status: "pending"},
	}
	stats := Aggregate(list, Overrides{"3": StatusComplete})
	assert.Equal(t, 100, stats.CompletionRate)
	assert.Equal(t, 3, stats.CompletedOrders)
}

func TestAggregate_BucketsSumToTotal(t *testing.T) {
	statuses := []string{"pending", "inprogress", "completed", "delivered", "weird", "", "IN-PROGRESS"}
	var list []Order
	for i, s := range statuses {
		list = append(list, Order{ID: ID(strings.Repeat("x", i+1)), Status: s})
	}
	stats := Aggregate(list, Overrides{"x": StatusComplete})
	assert.Equal(t, stats.TotalOrders, stats.PendingOrders+stats.InProgressOrders+stats.CompletedOrders)
	assert.Equal(t, len(statuses), stats.TotalOrders)
}

func TestAggregate_OnlyInProgressContributesItems(t *testing.T) {
	list := []Order{
		{ID: "P", Status: "pending", NetTotal: dec("10"), Items: ItemList{{ProductID: "1", ProductName: "Salt 1kg", Quantity: 5, TotalAmount: nullDec("10")}}},
		{ID: "O", Status: "inprogress", NetTotal: dec("20"), Items: ItemList{{ProductID: "2", ProductName: "Sugar 1kg", Quantity: 7, TotalAmount: nullDec("20")}}},
	}
	// zamówienie O oznaczone lokalnie jako zakończone
	stats := Aggregate(list, Overrides{"O": StatusComplete})

	assert.Equal(t, 0, stats.TotalItems)
	assert.Equal(t, 0.0, stats.TotalWeight)
	assert.True(t, stats.InProgressValue.IsZero())
	assert.Empty(t, stats.ItemSummary)
	assert.True(t, stats.CompletedValue.Equal(dec("20")))
	assert.True(t, stats.PendingValue.Equal(dec("10")))
}

func TestAggregate_MergesAndSortsSummary(t *testing.T) {
	list := []Order{
		{ID: "1", Status: "inprogress", Items: ItemList{
			{ProductID: "A", ProductName: "Cinnamon - Ceylon", Quantity: 1, UnitPrice: nullDec("3")},
			{ProductID: "B", ProductName: "Nutmeg 100g", Quantity: 2, UnitPrice: nullDec("4")},
		}},
		{ID: "2", Status: "inprogress", Items: ItemList{
			{ProductID: "B", ProductName: "Nutmeg 100g", Quantity: 3, UnitPrice: nullDec("4")},
			{ProductID: "A", ProductName: "Cinnamon - Ceylon", Quantity: 1, UnitPrice: nullDec("3")},
			{ProductID: "C", ProductName: "Bay Leaf", Quantity: 2},
		}},
	}

	stats := Aggregate(list, nil)

	require.Len(t, stats.ItemSummary, 3)
	assert.Equal(t, "B", stats.ItemSummary[0].Code)
	assert.Equal(t, 5, stats.ItemSummary[0].TotalQty)
	assert.True(t, stats.ItemSummary[0].TotalValue.Equal(dec("20")))
	assert.Equal(t, map[string]int{"100g": 5}, stats.ItemSummary[0].Variants)
	// remis 2:2 zostaje w kolejności pierwszego wystąpienia
	assert.Equal(t, "A", stats.ItemSummary[1].Code)
	assert.Equal(t, "C", stats.ItemSummary[2].Code)
	assert.Empty(t, stats.ItemSummary[2].Variants)
	assert.Equal(t, 9, stats.TotalItems)
}

func TestAggregate_Deterministic(t *testing.T) {
	a := Aggregate(scenarioOrders(), Overrides{"C": StatusComplete})
	b := Aggregate(scenarioOrders(), Overrides{"C": StatusComplete})
	assert.Equal(t, a, b)
}

func TestAggregate_AcceptsEnrichedInput(t *testing.T) {
	raw := scenarioOrders()
	enriched := EnrichAll(raw, nil)
	assert.Equal(t, Aggregate(raw, nil), Aggregate(enriched, nil))
}

func TestFilterByStatus(t *testing.T) {
	enriched := EnrichAll(scenarioOrders(), nil)
	pending := FilterByStatus(enriched, StatusPending)
	require.Len(t, pending, 1)
	assert.Equal(t, ID("C"), pending[0].ID)
}

// ===========================================
// DecodeList
// ===========================================

func TestDecodeList_Envelope(t *testing.T) {
	body := `{"success":true,"data":{"orders":[
		{"order_id": 17, "order_status": "inprogress", "total_amount": "250.50", "no_of_products": 1,
		 "products_json": "[{\"product_id\": 3, \"product_name\": \"Cumin 250g\", \"quantity\": 2, \"unit_price\": 125.25, \"total_amount\": \"250.50\", \"category_name\": \"Seeds\"}]",
		 "customer_name": "Spice Hub", "order_date": "2024-05-01"}
	]}}`

	list, err := DecodeList(strings.NewReader(body))

	require.NoError(t, err)
	require.Len(t, list, 1)
	o := list[0]
	assert.Equal(t, ID("17"), o.ID)
	assert.True(t, o.NetTotal.Equal(dec("250.5")))
	require.Len(t, o.Items, 1)
	assert.Equal(t, ID("3"), o.Items[0].ProductID)
	assert.True(t, o.Items[0].UnitPrice.Valid)
	assert.True(t, o.Items[0].UnitPrice.Decimal.Equal(dec("125.25")))
	assert.Equal(t, "Seeds", o.Items[0].CategoryName)
}

func TestDecodeList_BareArrayAndNulls(t *testing.T) {
	body := `[{"order_id":"X-1","order_status":null,"total_amount":10,"products_json":[{"product_name":"Salt","quantity":1,"unit_price":null}]},
	          {"order_id":"X-2","total_amount":0,"products_json":null}]`

	list, err := DecodeList(strings.NewReader(body))

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Items[0].UnitPrice.Valid)
	assert.False(t, list[0].Items[0].TotalAmount.Valid)
	assert.Nil(t, list[1].Items)
}

func TestDecodeList_LenientCounts(t *testing.T) {
	cases := map[string]struct {
		body     string
		qty      Count
		products Count
	}{
		"quantity as string":       {`[{"order_id":1,"products_json":[{"quantity":"4"}]}]`, 4, 0},
		"quantity as float":        {`[{"order_id":1,"products_json":[{"quantity":2.0}]}]`, 2, 0},
		"fraction truncated":       {`[{"order_id":1,"products_json":[{"quantity":" 3.9 "}]}]`, 3, 0},
		"no_of_products as string": {`[{"order_id":1,"no_of_products":"3","products_json":[{"quantity":1}]}]`, 1, 3},
		"garbage quantity":         {`[{"order_id":1,"products_json":[{"quantity":"lots"}]}]`, 0, 0},
		"null and object":          {`[{"order_id":1,"no_of_products":{},"products_json":[{"quantity":null}]}]`, 0, 0},
		"boolean quantity":         {`[{"order_id":1,"products_json":[{"quantity":true}]}]`, 0, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			list, err := DecodeList(strings.NewReader(tc.body))
			require.NoError(t, err)
			require.Len(t, list, 1)
			require.Len(t, list[0].Items, 1)
			assert.Equal(t, tc.qty, list[0].Items[0].Quantity)
			assert.Equal(t, tc.products, list[0].ProductCount)
		})
	}
}

func TestDecodeList_StringQuantityReachesStats(t *testing.T) {
	body := `[{"order_id":"A","order_status":"inprogress","total_amount":"10",
		"products_json":[{"product_id":"P","product_name":"Cumin 100g","quantity":"4","unit_price":"2.5"}]}]`

	list, err := DecodeList(strings.NewReader(body))
	require.NoError(t, err)

	stats := Aggregate(list, nil)
	assert.Equal(t, 4, stats.TotalItems)
	assert.InDelta(t, 0.4, stats.TotalWeight, 1e-9)
	require.Len(t, stats.ItemSummary, 1)
	assert.True(t, stats.ItemSummary[0].TotalValue.Equal(dec("10")))
}

func TestDecodeList_EmptyAndBroken(t *testing.T) {
	list, err := DecodeList(strings.NewReader("  "))
	assert.NoError(t, err)
	assert.Empty(t, list)

	_, err = DecodeList(strings.NewReader("{not json"))
	assert.Error(t, err)
}
