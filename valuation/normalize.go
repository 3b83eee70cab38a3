package valuation

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Alternate key names the pricing provider has been observed using for each
// canonical field, in priority order. The provider's payload shape is not
// contractually fixed, so extraction has to tolerate renames and arbitrary
// wrapper nesting.
var (
	makeKeys    = []string{"make", "manufacturer", "brand"}
	modelKeys   = []string{"model", "modelName"}
	yearKeys    = []string{"year", "productionYear"}
	baseKeys    = []string{"basePrice", "price", "valuation"}
	averageKeys = []string{"averagePrice", "price_avr"}
	reserveKeys = []string{"reservePrice", "reserve_price", "valuation"}
	minKeys     = []string{"price_min", "minPrice"}
	medKeys     = []string{"price_med", "medianPrice"}
)

// maxSearchDepth bounds the recursive key search. Observed payloads nest three
// or four levels deep at most.
const maxSearchDepth = 8

// Normalize extracts a ValuationData from a provider payload of unknown
// shape. It never fails: a garbage or empty payload yields a zero
// ValuationData, which the resolver reports as "no data".
//
// Missing reserve prices are filled from the base price via CalculateReserve,
// and the computed value is mirrored into Valuation (the one-field-does-both
// convention the rest of the site relies on).
func Normalize(payload []byte) ValuationData {
	var root any
	if err := json.Unmarshal(payload, &root); err != nil {
		return ValuationData{}
	}

	m, ok := root.(map[string]any)
	if !ok {
		return ValuationData{}
	}
	// Providers frequently wrap the payload in one more {data: ...} envelope.
	if inner, ok := m["data"].(map[string]any); ok {
		m = inner
	}

	var d ValuationData
	d.Make = findString(m, makeKeys)
	d.Model = findString(m, modelKeys)
	d.Year = findInt(m, yearKeys)
	d.BasePrice = findPrice(m, baseKeys)
	d.AveragePrice = findPrice(m, averageKeys)
	d.ReservePrice = findPrice(m, reserveKeys)

	base := d.BasePrice
	if base == 0 {
		base = d.AveragePrice
	}

	// Last resort when no explicit base or reserve price was sent: a min/med
	// pair yields their midpoint, a lone median is taken as the base.
	if base == 0 && d.ReservePrice == 0 {
		min := findPrice(m, minKeys)
		med := findPrice(m, medKeys)
		switch {
		case min > 0 && med > 0:
			base = int(math.Round(float64(min+med) / 2))
		case med > 0:
			base = med
		}
	}

	if base > 0 && d.ReservePrice == 0 {
		d.ReservePrice = CalculateReserve(base)
	}

	if base > 0 {
		d.BasePrice = base
	}
	if d.ReservePrice > 0 && d.Valuation == 0 {
		d.Valuation = d.ReservePrice
	}

	return d
}

// find returns the first value for any of the alternate keys: each alternate
// is tried at the top level in priority order, then the whole object graph is
// searched depth-first and the first matching key wins.
func find(m map[string]any, alts []string) (any, bool) {
	for _, key := range alts {
		if v, ok := m[key]; ok && scalar(v) {
			return v, true
		}
	}
	return search(m, alts, 0)
}

// search walks the object graph depth-first looking for any of the alternate
// key names. Map keys are visited in sorted order so the result is
// deterministic; Go maps do not preserve the JSON object order.
func search(node any, alts []string, depth int) (any, bool) {
	if depth > maxSearchDepth {
		return nil, false
	}

	switch n := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := n[k]
			if !scalar(v) {
				// A wrapper object named like a field (e.g. a "valuation"
				// envelope) is not the field; keep descending instead.
				continue
			}
			for _, alt := range alts {
				if strings.EqualFold(k, alt) {
					return v, true
				}
			}
		}
		for _, k := range keys {
			if v, ok := search(n[k], alts, depth+1); ok {
				return v, true
			}
		}
	case []any:
		for _, v := range n {
			if found, ok := search(v, alts, depth+1); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func scalar(v any) bool {
	switch v.(type) {
	case string, float64, bool:
		return true
	}
	return false
}

func findString(m map[string]any, alts []string) string {
	v, ok := find(m, alts)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		// Some feeds send model designations as bare numbers.
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func findInt(m map[string]any, alts []string) int {
	v, ok := find(m, alts)
	if !ok {
		return 0
	}
	return coerceInt(v)
}

// findPrice is findInt restricted to positive values; a non-positive price is
// treated as absent so downstream pricing never sees it.
func findPrice(m map[string]any, alts []string) int {
	if n := findInt(m, alts); n > 0 {
		return n
	}
	return 0
}

// coerceInt converts the numeric shapes the provider sends: JSON numbers and
// numeric strings (sometimes with spaces or thousands separators).
func coerceInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(math.Round(n))
	case string:
		s := strings.TrimSpace(n)
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return int(math.Round(f))
	}
	return 0
}
