package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/client/pricing"
	"github.com/dmitrijs2005/quickflip/internal/client/store"
	"github.com/dmitrijs2005/quickflip/internal/common"
)

var errAmbiguousID = errors.New("ambiguous item id")

func (a *App) Login(ctx context.Context, args []string) error {
	var email, name string
	if len(args) > 0 {
		email = args[0]
		name = strings.Join(args[1:], " ")
	} else {
		var err error
		if email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
			return a.fail(err)
		}
		if name, err = GetSimpleText(a.reader, "Full name (optional)", a.out); err != nil {
			return a.fail(err)
		}
	}

	u, err := a.session.SignIn(ctx, email, name)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Signed in as %s\n", u.Email)
	a.reportLoadError()
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return a.fail(err)
	}
	a.printf("Signed out\n")
	return nil
}

func (a *App) Load(ctx context.Context) error {
	if err := a.store.LoadAll(ctx); err != nil {
		return a.fail(err)
	}
	a.printf("%d items\n", len(a.store.Items("")))
	return nil
}

// Scan starts one capture per path and waits for all of them. Placeholders
// are in the store while the enrichment runs.
func (a *App) Scan(ctx context.Context, args []string) error {
	if len(args) == 0 {
		path, err := GetSimpleText(a.reader, "Image path", a.out)
		if err != nil {
			return a.fail(err)
		}
		args = []string{path}
	}

	captures := make([]*store.Capture, 0, len(args))
	for _, path := range args {
		c, err := a.store.CaptureItem(ctx, path)
		if err != nil {
			return a.fail(err)
		}
		a.printf("Scanning %s as %s\n", path, c.TempID.Short())
		captures = append(captures, c)
	}

	var failed error
	for i, c := range captures {
		id, err := c.Wait(ctx)
		switch {
		case store.IsDiscarded(err):
			a.printf("%s: removed before analysis finished\n", args[i])
		case err != nil:
			a.printf("%s: analysis failed: %s\n", args[i], err)
			failed = err
		default:
			it, gerr := a.store.Get(id)
			if gerr != nil {
				continue
			}
			a.printf("%s: %s %s (%s, %s comps)\n", id.Short(), it.Title,
				pricing.FormatPrice(it.EstimatedPrice), pricing.DeriveConfidence(it.PriceSampleCount), it.ComparableLabel())
		}
	}
	return failed
}

func (a *App) List(ctx context.Context, args []string) error {
	var status models.Status
	if len(args) > 0 && args[0] != "all" {
		s, err := models.ParseStatus(args[0])
		if err != nil {
			return a.fail(err)
		}
		status = s
	}

	items := a.store.Items(status)
	if len(items) == 0 {
		a.printf("No items\n")
		return nil
	}
	renderItems(a.out, items)
	return nil
}

func (a *App) Buy(ctx context.Context, args []string) error {
	id, price, err := a.idAndPrice("buy", args)
	if err != nil {
		return a.fail(err)
	}
	it, err := a.store.MarkPurchased(ctx, id, price)
	if err != nil {
		if store.IsDiscarded(err) {
			return nil
		}
		return a.fail(err)
	}
	a.printf("Bought %s for %s\n", it.ID.Short(), pricing.FormatPrice(it.PricePaid))
	return nil
}

func (a *App) Sell(ctx context.Context, args []string) error {
	id, price, err := a.idAndPrice("sell", args)
	if err != nil {
		return a.fail(err)
	}
	it, err := a.store.MarkSold(ctx, id, price)
	if err != nil {
		if store.IsDiscarded(err) {
			return nil
		}
		return a.fail(err)
	}
	a.printf("Sold %s for %s, profit %s (%s)\n", it.ID.Short(),
		pricing.FormatPrice(it.PriceSold),
		pricing.FormatPrice(pricing.ComputeProfit(it.PriceSold, it.PricePaid)),
		pricing.FormatPercentage(pricing.ProfitPercentage(it.PriceSold, it.PricePaid), true))
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return a.fail(errors.New("usage: edit <id> field=value..."))
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return a.fail(err)
	}
	patch, err := parsePatch(args[1:])
	if err != nil {
		return a.fail(err)
	}
	it, err := a.store.UpdateFields(ctx, id, patch)
	if err != nil {
		if store.IsDiscarded(err) {
			return nil
		}
		return a.fail(err)
	}
	a.printf("Updated %s\n", it.ID.Short())
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.fail(errors.New("usage: delete <id>"))
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return a.fail(err)
	}
	if err := a.store.DeleteItem(ctx, id); err != nil {
		return a.fail(err)
	}
	a.printf("Deleted %s\n", id.Short())
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	sold := pricing.Summarize(a.store.Items(models.StatusSold))
	held := pricing.EstimateResale(a.store.Items(models.StatusPurchased))
	renderStats(a.out, sold, held)
	return nil
}

func (a *App) Chart(ctx context.Context) error {
	points := pricing.MonthlySeries(a.store.Items(models.StatusSold), a.now(), chartMonths)
	renderChart(a.out, points)
	return nil
}

func (a *App) idAndPrice(cmd string, args []string) (models.ItemID, float64, error) {
	if len(args) != 2 {
		return models.ItemID{}, 0, fmt.Errorf("usage: %s <id> <price>", cmd)
	}
	id, err := a.resolve(args[0])
	if err != nil {
		return models.ItemID{}, 0, err
	}
	price, err := pricing.ValidatePrice(args[1])
	if err != nil {
		return models.ItemID{}, 0, err
	}
	return id, price, nil
}

// resolve finds the single item whose id (or short id) starts with prefix.
// An exact match always wins.
func (a *App) resolve(prefix string) (models.ItemID, error) {
	var match []models.ItemID
	for _, it := range a.store.Items("") {
		if it.ID.String() == prefix {
			return it.ID, nil
		}
		if strings.HasPrefix(it.ID.String(), prefix) || strings.HasPrefix(it.ID.Short(), prefix) {
			match = append(match, it.ID)
		}
	}
	switch len(match) {
	case 0:
		return models.ItemID{}, fmt.Errorf("%s: %w", prefix, common.ErrNotFound)
	case 1:
		return match[0], nil
	default:
		return models.ItemID{}, fmt.Errorf("%w: %s matches %d items", errAmbiguousID, prefix, len(match))
	}
}

// parsePatch reads field=value pairs. A token without "=" continues the
// previous value, so "title=Brass lamp" needs no quoting.
func parsePatch(tokens []string) (models.Patch, error) {
	values := map[string]string{}
	var order []string
	last := ""
	for _, tok := range tokens {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			if last == "" {
				return models.Patch{}, fmt.Errorf("expected field=value, got %q", tok)
			}
			values[last] += " " + tok
			continue
		}
		key = strings.ToLower(key)
		if _, seen := values[key]; !seen {
			order = append(order, key)
		}
		values[key] = val
		last = key
	}

	var p models.Patch
	for _, key := range order {
		val := values[key]
		switch key {
		case "title":
			p.Title = models.String(val)
		case "description":
			p.Description = models.String(val)
		case "condition":
			p.Condition = models.String(val)
		case "estimate", "paid", "sold":
			v, err := pricing.ValidatePrice(val)
			if err != nil {
				return models.Patch{}, fmt.Errorf("%s: %w", key, err)
			}
			switch key {
			case "estimate":
				p.EstimatedPrice = &v
			case "paid":
				p.PricePaid = &v
			default:
				p.PriceSold = &v
			}
		default:
			return models.Patch{}, fmt.Errorf("unknown field %q", key)
		}
	}
	return p, nil
}
