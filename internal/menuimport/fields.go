package menuimport

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// idString renders a raw id field, which arrives as a JSON number or a
// string depending on the feed version. Empty string means absent.
func idString(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		if typed == math.Trunc(typed) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	default:
		return ""
	}
}

// stringField returns the trimmed string at key, or the fallback.
func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// priceField reads a money amount that may arrive as a JSON number or a
// numeric string; anything else is zero.
func priceField(m map[string]any, key string) decimal.Decimal {
	switch typed := m[key].(type) {
	case float64:
		return decimal.NewFromFloat(typed)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(typed)); err == nil {
			return d
		}
	case int:
		return decimal.NewFromInt(int64(typed))
	}
	return decimal.Zero
}

// intField parses a selection bound that may arrive as a number or a
// numeric string. The second return is false when the key is absent or
// the value is not numeric, in which case callers fall back to defaults.
func intField(m map[string]any, key string) (int, bool) {
	switch typed := m[key].(type) {
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return 0, false
		}
		return int(typed), true
	case int:
		return typed, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(typed)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// boolField is loose like the rest of the feed: booleans and the strings
// "true"/"1" count as true.
func boolField(m map[string]any, key string) bool {
	switch typed := m[key].(type) {
	case bool:
		return typed
	case string:
		return typed == "true" || typed == "1"
	case float64:
		return typed != 0
	}
	return false
}

// firstIntField returns the first present numeric value among keys.
func firstIntField(m map[string]any, keys ...string) (int, bool) {
	for _, key := range keys {
		if _, present := m[key]; !present {
			continue
		}
		if n, ok := intField(m, key); ok {
			return n, true
		}
		// Present but non-numeric: the legacy feeds expect the default.
		return 0, false
	}
	return 0, false
}

// hasAnyKey reports whether any of the keys is present at all.
func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}
