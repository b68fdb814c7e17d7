package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/dmitrijs2005/quickflip/internal/logging"
)

var (
	t0      = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	errBoom = errors.New("boom")
)

type fakeClient struct {
	mu       sync.Mutex
	products []models.Item
	listErr  error
	listGate chan struct{}

	describe func(ctx context.Context, payload, userID string) (*models.Enrichment, error)
	update   func(ctx context.Context, id string, patch models.Patch) (*models.Item, error)
	status   func(ctx context.Context, id string, status models.Status, price float64) (*models.Item, error)

	deleteErr error
	calls     []string
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) find(id string) (models.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID.String() == id {
			return p.Clone(), true
		}
	}
	return models.Item{}, false
}

func (f *fakeClient) CreateOrGetUser(_ context.Context, email, fullName string) (*models.User, error) {
	f.record("users")
	return &models.User{ID: "usr-" + email, Email: email, FullName: fullName}, nil
}

func (f *fakeClient) ListProducts(ctx context.Context, userID string) ([]models.Item, error) {
	f.record("list:" + userID)
	if f.listGate != nil {
		select {
		case <-f.listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Item, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (f *fakeClient) DescribeImage(ctx context.Context, payload, userID string) (*models.Enrichment, error) {
	f.record("describe")
	if f.describe != nil {
		return f.describe(ctx, payload, userID)
	}
	return &models.Enrichment{ID: "srv-new", Title: "Thing"}, nil
}

func (f *fakeClient) UpdateStatus(ctx context.Context, id string, status models.Status, price float64) (*models.Item, error) {
	f.record("status:" + id)
	if f.status != nil {
		return f.status(ctx, id, status, price)
	}
	p, ok := f.find(id)
	if !ok {
		return nil, fmt.Errorf("fake: %s missing", id)
	}
	at := t0.Add(time.Hour)
	p.Status = status
	p.UpdatedAt = at
	switch status {
	case models.StatusPurchased:
		p.PricePaid = models.Float(price)
		p.PurchasedAt = &at
	case models.StatusSold:
		p.PriceSold = models.Float(price)
		p.SoldAt = &at
	}
	return &p, nil
}

func (f *fakeClient) UpdateProduct(ctx context.Context, id string, patch models.Patch) (*models.Item, error) {
	f.record("update:" + id)
	if f.update != nil {
		return f.update(ctx, id, patch)
	}
	p, ok := f.find(id)
	if !ok {
		return nil, fmt.Errorf("fake: %s missing", id)
	}
	patch.Apply(&p)
	p.UpdatedAt = t0.Add(2 * time.Hour)
	return &p, nil
}

func (f *fakeClient) DeleteProduct(_ context.Context, id string) error {
	f.record("delete:" + id)
	return f.deleteErr
}

type stubImages struct {
	err  error
	wait chan struct{}
}

func (s stubImages) Encode(ctx context.Context, ref string) (string, error) {
	if s.wait != nil {
		select {
		case <-s.wait:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return common.JPEGDataURIPrefix + ref, nil
}

func newTestStore(t *testing.T, fc *fakeClient) *Store {
	t.Helper()
	s := New(fc, stubImages{}, logging.Nop())
	s.now = func() time.Time { return t0 }
	s.SetUser(&models.User{ID: "usr-1", Email: "ana@example.com"})
	return s
}

// loadedStore returns a store whose collection holds products.
func loadedStore(t *testing.T, products ...models.Item) (*Store, *fakeClient) {
	t.Helper()
	fc := &fakeClient{products: products}
	s := newTestStore(t, fc)
	require.NoError(t, s.LoadAll(context.Background()))
	return s, fc
}

func product(id string, status models.Status, created time.Time) models.Item {
	it := models.Item{
		ID:        models.ConfirmedID(id),
		OwnerID:   "usr-1",
		Title:     "Item " + id,
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if status != models.StatusScanned {
		it.PricePaid = models.Float(30)
		it.PurchasedAt = &created
	}
	if status == models.StatusSold {
		it.PriceSold = models.Float(50)
		it.SoldAt = &created
	}
	return it
}

func ids(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID.String())
	}
	return out
}

// gate returns a describe func that blocks until release is closed and then
// answers with e.
func gate(e *models.Enrichment, err error) (func(context.Context, string, string) (*models.Enrichment, error), chan struct{}) {
	release := make(chan struct{})
	return func(context.Context, string, string) (*models.Enrichment, error) {
		<-release
		return e, err
	}, release
}

func waitCapture(t *testing.T, c *Capture) (models.ItemID, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := c.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "capture did not resolve")
	return id, err
}
