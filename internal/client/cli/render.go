package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/client/pricing"
)

const chartWidth = 30

func renderItems(w io.Writer, items []models.Item) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tESTIMATE\tCONF\tPAID\tSOLD\tPROFIT")
	for _, it := range items {
		title := it.Title
		if it.IsPlaceholder() {
			title = "(analyzing)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID.Short(),
			strings.ToLower(string(it.Status)),
			title,
			pricing.FormatPrice(it.EstimatedPrice),
			pricing.DeriveConfidence(it.PriceSampleCount),
			pricing.FormatPrice(it.PricePaid),
			pricing.FormatPrice(it.PriceSold),
			pricing.FormatPrice(pricing.ComputeProfit(it.PriceSold, it.PricePaid)),
		)
	}
	_ = tw.Flush()
}

func renderStats(w io.Writer, sold pricing.Summary, held pricing.Estimate) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Sold items\t%d\n", sold.ItemCount)
	fmt.Fprintf(tw, "Revenue\t%s\n", pricing.FormatPrice(&sold.TotalRevenue))
	fmt.Fprintf(tw, "Cost\t%s\n", pricing.FormatPrice(&sold.TotalCost))
	fmt.Fprintf(tw, "Profit\t%s\n", pricing.FormatPrice(&sold.TotalProfit))
	fmt.Fprintf(tw, "Margin\t%s\n", pricing.FormatPercentage(sold.ProfitMargin, false))
	fmt.Fprintf(tw, "Avg return\t%s\n", pricing.FormatPercentage(sold.AverageProfitPercentage, true))
	fmt.Fprintf(tw, "Held items\t%d\n", held.ItemCount)
	fmt.Fprintf(tw, "Invested\t%s\n", pricing.FormatPrice(&held.TotalPaid))
	fmt.Fprintf(tw, "Est. resale\t%s\n", pricing.FormatPrice(&held.TotalResale))
	fmt.Fprintf(tw, "Potential gain\t%s\n", pricing.FormatPrice(&held.PotentialGain))
	_ = tw.Flush()
}

func renderChart(w io.Writer, points []pricing.MonthPoint) {
	top := 0.0
	for _, p := range points {
		if p.Revenue > top {
			top = p.Revenue
		}
	}
	for _, p := range points {
		n := 0
		if top > 0 {
			n = int(p.Revenue / top * chartWidth)
		}
		fmt.Fprintf(w, "%s %-*s %s (profit %s)\n", p.Label, chartWidth, strings.Repeat("#", n),
			pricing.FormatPrice(&p.Revenue), pricing.FormatPrice(&p.Profit))
	}
}
