// Package pricing normalises price values and derives the flags and
// aggregates shown next to items. Everything here is pure.
package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/quickflip/internal/common"
)

// CoercePrice converts a raw price as it arrives from user input or backend
// JSON into a finite number, or nil when the value is absent or not a
// number. It never returns NaN, and never substitutes zero for absence.
func CoercePrice(raw any) *float64 {
	var v float64
	switch value := raw.(type) {
	case nil:
		return nil
	case *float64:
		if value == nil {
			return nil
		}
		v = *value
	case float64:
		v = value
	case float32:
		v = float64(value)
	case int:
		v = float64(value)
	case int64:
		v = float64(value)
	case json.Number:
		return parse(string(value))
	case string:
		return parse(value)
	default:
		return nil
	}
	return finite(v)
}

func parse(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(v)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ValidatePrice parses user input for a purchase or sale price. Only
// positive finite numbers are accepted.
func ValidatePrice(text string) (float64, error) {
	p := parse(text)
	if p == nil || *p <= 0 {
		return 0, common.ErrInvalidPrice
	}
	return *p, nil
}

// CheckAmount is ValidatePrice for values that are already numeric.
func CheckAmount(v float64) error {
	if finite(v) == nil || v <= 0 {
		return common.ErrInvalidPrice
	}
	return nil
}

// FormatPrice renders "$12.50", or "—" for an absent price.
func FormatPrice(p *float64) string {
	if p == nil {
		return "—"
	}
	return fmt.Sprintf("$%.2f", *p)
}

// FormatPercentage renders one decimal place, with a leading "+" for
// non-negative values when withSign is set.
func FormatPercentage(v float64, withSign bool) string {
	sign := ""
	if withSign && v >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, v)
}
