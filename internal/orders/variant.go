package orders

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reWeightToken = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s?(?:kg|g|ml|l)\b`)
	reSizeToken   = regexp.MustCompile(`(?i)(?:^|[\s(/,;:])(small|medium|large|xxl|xl|s|m|l)(?:$|[\s)/,;:.!])`)
)

const (
	dashSeparator  = " - "
	maxDashVariant = 20
)

// kolejność reguł = kolejność w wyniku
var variantRules = []func(desc string) string{
	matchWeightToken,
	matchSizeToken,
	matchDashSegment,
}

// ExtractVariant wyciąga z nazwy produktu wagę/objętość, rozmiar i końcówkę po " - ".
// Heurystyka best-effort: nazwy są wolnym tekstem i bywają źle sklasyfikowane.
func ExtractVariant(desc string) (string, bool) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return "", false
	}
	var parts []string
	for _, rule := range variantRules {
		tok := rule(desc)
		if tok == "" || containsFold(parts, tok) {
			continue
		}
		parts = append(parts, tok)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func matchWeightToken(desc string) string {
	return strings.TrimSpace(reWeightToken.FindString(desc))
}

func matchSizeToken(desc string) string {
	// "1 l" to objętość, nie rozmiar L
	m := reSizeToken.FindStringSubmatch(reWeightToken.ReplaceAllString(desc, " "))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func matchDashSegment(desc string) string {
	idx := strings.LastIndex(desc, dashSeparator)
	if idx < 0 {
		return ""
	}
	seg := strings.TrimSpace(desc[idx+len(dashSeparator):])
	if seg == "" || utf8.RuneCountInString(seg) >= maxDashVariant {
		return ""
	}
	return seg
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
