package pricing

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	items := []models.Item{
		{Status: models.StatusSold, PricePaid: f(30), PriceSold: f(60)},
		{Status: models.StatusSold, PricePaid: f(10), PriceSold: f(15)},
		{Status: models.StatusSold, PriceSold: f(25)},
	}

	s := Summarize(items)
	assert.InDelta(t, 100.0, s.TotalRevenue, 1e-9)
	assert.InDelta(t, 40.0, s.TotalCost, 1e-9)
	assert.InDelta(t, 60.0, s.TotalProfit, 1e-9)
	assert.InDelta(t, 60.0, s.ProfitMargin, 1e-9)
	// (100% + 50% + 0) / 3
	assert.InDelta(t, 50.0, s.AverageProfitPercentage, 1e-9)
	assert.Equal(t, 3, s.ItemCount)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarize_DecimalSums(t *testing.T) {
	items := []models.Item{
		{PriceSold: f(0.1)},
		{PriceSold: f(0.2)},
	}
	assert.Equal(t, 0.3, Summarize(items).TotalRevenue)
}

func TestEstimateResale(t *testing.T) {
	items := []models.Item{
		{Status: models.StatusPurchased, PricePaid: f(20), EstimatedPrice: f(45.5)},
		{Status: models.StatusPurchased, PricePaid: f(5)},
	}
	e := EstimateResale(items)
	assert.InDelta(t, 25.0, e.TotalPaid, 1e-9)
	assert.InDelta(t, 45.5, e.TotalResale, 1e-9)
	assert.InDelta(t, 20.5, e.PotentialGain, 1e-9)
	assert.Equal(t, 2, e.ItemCount)
}

func TestMonthlySeries(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	soldJan := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	soldMar := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

	items := []models.Item{
		{Status: models.StatusSold, PricePaid: f(30), PriceSold: f(60), SoldAt: &soldJan},
		{Status: models.StatusSold, PriceSold: f(40), SoldAt: &soldMar},
		{Status: models.StatusSold, PricePaid: f(5), PriceSold: f(10), CreatedAt: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{Status: models.StatusPurchased, PricePaid: f(5), CreatedAt: soldMar},
		{Status: models.StatusSold, PriceSold: f(99), CreatedAt: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
	}

	series := MonthlySeries(items, now, 6)
	require.Len(t, series, 6)

	labels := make([]string, 0, len(series))
	for _, p := range series {
		labels = append(labels, p.Label)
	}
	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, labels)

	assert.Equal(t, 10.0, series[2].Revenue)
	assert.Equal(t, 5.0, series[2].Profit)
	assert.Equal(t, 60.0, series[3].Revenue)
	assert.Equal(t, 30.0, series[3].Profit)
	assert.Equal(t, 40.0, series[5].Revenue)
	assert.Equal(t, 0.0, series[5].Profit)
	assert.Equal(t, 0.0, series[0].Revenue)
}

func TestMonthlySeries_NoMonths(t *testing.T) {
	assert.Nil(t, MonthlySeries(nil, time.Now(), 0))
}
