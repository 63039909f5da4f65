package orders

import "strings"

var statusSeparators = strings.NewReplacer("_", "", "-", "", " ", "")

// Reconcile łączy status z backendu z lokalnym override.
// Override "Complete" wygrywa zawsze, reszta idzie przez NormalizeStatus.
func Reconcile(o Order, overrides Overrides) Status {
	if s, ok := overrides.Lookup(string(o.ID)); ok && strings.EqualFold(string(s), string(StatusComplete)) {
		return StatusComplete
	}
	return NormalizeStatus(o.Status)
}

// NormalizeStatus mapuje surowy status backendu; nieznany lub pusty = Pending.
func NormalizeStatus(raw string) Status {
	switch statusSeparators.Replace(strings.ToLower(strings.TrimSpace(raw))) {
	case "completed", "delivered":
		return StatusComplete
	case "inprogress":
		return StatusInProgress
	default:
		return StatusPending
	}
}

// ParseStatus przyjmuje zarówno nazwy wyświetlane, jak i statusy backendu.
func ParseStatus(s string) (Status, bool) {
	switch statusSeparators.Replace(strings.ToLower(strings.TrimSpace(s))) {
	case "complete", "completed", "delivered":
		return StatusComplete, true
	case "inprogress":
		return StatusInProgress, true
	case "pending":
		return StatusPending, true
	default:
		return "", false
	}
}
