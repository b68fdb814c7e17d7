package pricing

import (
	"time"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func dec(p *float64) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*p)
}

// Summary aggregates realised results over a set of items.
type Summary struct {
	TotalRevenue            float64
	TotalCost               float64
	TotalProfit             float64
	ProfitMargin            float64
	AverageProfitPercentage float64
	ItemCount               int
}

// Summarize sums sale and purchase prices over items. The margin is 0 when
// there is no revenue. The average profit percentage is taken over all
// items, counting items without both prices (or with a zero buy price) as 0.
func Summarize(items []models.Item) Summary {
	revenue, cost, pctSum := decimal.Zero, decimal.Zero, decimal.Zero

	for _, it := range items {
		revenue = revenue.Add(dec(it.PriceSold))
		cost = cost.Add(dec(it.PricePaid))
		if it.PricePaid != nil && it.PriceSold != nil && *it.PricePaid > 0 {
			paid := dec(it.PricePaid)
			pctSum = pctSum.Add(dec(it.PriceSold).Sub(paid).Div(paid).Mul(hundred))
		}
	}

	profit := revenue.Sub(cost)
	s := Summary{
		TotalRevenue: revenue.InexactFloat64(),
		TotalCost:    cost.InexactFloat64(),
		TotalProfit:  profit.InexactFloat64(),
		ItemCount:    len(items),
	}
	if revenue.IsPositive() {
		s.ProfitMargin = profit.Div(revenue).Mul(hundred).InexactFloat64()
	}
	if len(items) > 0 {
		s.AverageProfitPercentage = pctSum.Div(decimal.NewFromInt(int64(len(items)))).InexactFloat64()
	}
	return s
}

// Estimate is the potential outcome of items not yet sold.
type Estimate struct {
	TotalPaid     float64
	TotalResale   float64
	PotentialGain float64
	ItemCount     int
}

// EstimateResale sums purchase prices against estimated resale prices.
func EstimateResale(items []models.Item) Estimate {
	paid, resale := decimal.Zero, decimal.Zero
	for _, it := range items {
		paid = paid.Add(dec(it.PricePaid))
		resale = resale.Add(dec(it.EstimatedPrice))
	}
	return Estimate{
		TotalPaid:     paid.InexactFloat64(),
		TotalResale:   resale.InexactFloat64(),
		PotentialGain: resale.Sub(paid).InexactFloat64(),
		ItemCount:     len(items),
	}
}

// MonthPoint is one bucket of the revenue chart.
type MonthPoint struct {
	Month   time.Time
	Label   string
	Revenue float64
	Profit  float64
}

// MonthlySeries buckets sold items into the last months calendar months
// ending with the month of now, oldest first. An item falls into the month
// it was sold in, or the month it was created in when no sale time is known.
// Profit only counts items that also carry a purchase price.
func MonthlySeries(items []models.Item, now time.Time, months int) []MonthPoint {
	if months <= 0 {
		return nil
	}

	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(months - 1), 0)

	revenue := make([]decimal.Decimal, months)
	profit := make([]decimal.Decimal, months)

	for _, it := range items {
		if it.Status != models.StatusSold || it.PriceSold == nil || *it.PriceSold == 0 {
			continue
		}
		at := it.CreatedAt
		if it.SoldAt != nil {
			at = *it.SoldAt
		}
		at = at.In(loc)
		idx := (at.Year()-first.Year())*12 + int(at.Month()) - int(first.Month())
		if idx < 0 || idx >= months {
			continue
		}
		revenue[idx] = revenue[idx].Add(dec(it.PriceSold))
		if it.PricePaid != nil && *it.PricePaid != 0 {
			profit[idx] = profit[idx].Add(dec(it.PriceSold).Sub(dec(it.PricePaid)))
		}
	}

	out := make([]MonthPoint, months)
	for i := range out {
		m := first.AddDate(0, i, 0)
		out[i] = MonthPoint{
			Month:   m,
			Label:   m.Format("Jan"),
			Revenue: revenue[i].InexactFloat64(),
			Profit:  profit[i].InexactFloat64(),
		}
	}
	return out
}
