package orders

import (
	"regexp"
	"strings"
)

const defaultUnitWeightKg = 0.1

type weightRule struct {
	keywords []string
	kg       float64
}

// kategorie: wygrywa pierwsze trafienie
var categoryWeights = []weightRule{
	{keywords: []string{"cream", "serum"}, kg: 0.05},
	{keywords: []string{"lipstick", "mascara"}, kg: 0.02},
	{keywords: []string{"foundation", "palette"}, kg: 0.15},
}

// jawna gramatura w nazwie nadpisuje kategorię; token nie może być końcówką
// większej liczby ("2500g" to nie "500g")
var explicitWeights = []explicitWeight{
	gramRule("250g", 0.25),
	gramRule("100g", 0.1),
	gramRule("500g", 0.5),
	gramRule("1kg", 1.0),
}

type explicitWeight struct {
	re *regexp.Regexp
	kg float64
}

func gramRule(token string, kg float64) explicitWeight {
	return explicitWeight{re: regexp.MustCompile(`(?:^|[^\d.,])` + regexp.QuoteMeta(token)), kg: kg}
}

// EstimateWeight zwraca szacowaną wagę pozycji w kg (nigdy ujemną).
func EstimateWeight(desc string, qty int) float64 {
	if qty <= 0 {
		return 0
	}
	d := strings.ToLower(desc)
	unit := defaultUnitWeightKg
	if kg, ok := firstWeightMatch(categoryWeights, d); ok {
		unit = kg
	}
	for _, r := range explicitWeights {
		if r.re.MatchString(d) {
			unit = r.kg
			break
		}
	}
	return unit * float64(qty)
}

func firstWeightMatch(rules []weightRule, lowered string) (float64, bool) {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.kg, true
			}
		}
	}
	return 0, false
}
