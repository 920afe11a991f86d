package payment

import (
	"regexp"
	"strings"
)

// Bank narratives are free text: the order code may carry a "TT" transfer
// prefix, arbitrary casing, and surrounding noise.
var (
	prefixedOrderCode = regexp.MustCompile(`(?i)TT\s*CLINIC(\d+)`)
	bareOrderCode     = regexp.MustCompile(`(?i)CLINIC(\d+)`)
)

// ExtractOrderCode parses a transfer description into the canonical
// CLINIC<digits> order code. It is pure parsing over untrusted text; no
// lookups, no mutation. Returns false when no pattern matches.
func ExtractOrderCode(description string) (string, bool) {
	m := prefixedOrderCode.FindStringSubmatch(description)
	if m == nil {
		m = bareOrderCode.FindStringSubmatch(description)
	}
	if m == nil {
		return "", false
	}
	return "CLINIC" + m[1], true
}

// ContainsOrderCode reports whether a transaction narrative mentions the
// order code, case-insensitively. Used when scanning aggregator listings.
func ContainsOrderCode(narrative, orderCode string) bool {
	if orderCode == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(narrative), strings.ToUpper(orderCode))
}
