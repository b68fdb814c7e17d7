package pricing

import "github.com/dmitrijs2005/quickflip/internal/client/models"

// Confidence tells how well a price estimate is backed by comparable sales.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// DeriveConfidence maps a comparable-sales count to a tier:
// fewer than 5 is Low, 5 through 10 is Medium, more than 10 is High.
func DeriveConfidence(sampleCount int) Confidence {
	switch {
	case sampleCount > 10:
		return ConfidenceHigh
	case sampleCount >= 5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// LegacyFlags is the boolean view of a status used by simple list filters.
type LegacyFlags struct {
	Purchased bool
	Sold      bool
}

// DeriveLegacyFlags reports sold items as purchased too.
func DeriveLegacyFlags(s models.Status) LegacyFlags {
	return LegacyFlags{
		Purchased: s == models.StatusPurchased || s == models.StatusSold,
		Sold:      s == models.StatusSold,
	}
}

// ComputeProfit returns sell - buy, or nil when either side is absent.
func ComputeProfit(sell, buy *float64) *float64 {
	if sell == nil || buy == nil {
		return nil
	}
	v := *sell - *buy
	return &v
}

// ProfitPercentage returns the profit relative to the buy price in percent.
// A missing or zero buy price yields 0, which callers display as "0%"
// rather than as missing data.
func ProfitPercentage(sell, buy *float64) float64 {
	if sell == nil || buy == nil || *buy == 0 {
		return 0
	}
	return (*sell - *buy) / *buy * 100
}
