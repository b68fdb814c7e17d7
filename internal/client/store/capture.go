package store

import (
	"context"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/common"
)

// Capture tracks one in-flight enrichment.
type Capture struct {
	// TempID is the placeholder's id, valid until enrichment resolves.
	TempID models.ItemID

	done chan struct{}
	id   models.ItemID
	err  error

	// guarded by Store.mu
	cancel  context.CancelFunc
	deleted bool
}

// Done is closed once the placeholder has been replaced or removed.
func (c *Capture) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until enrichment resolves and returns the confirmed id.
// It returns common.ErrDiscarded when the placeholder was removed before
// the backend answered.
func (c *Capture) Wait(ctx context.Context) (models.ItemID, error) {
	select {
	case <-c.done:
		return c.id, c.err
	case <-ctx.Done():
		return models.ItemID{}, ctx.Err()
	}
}

func (c *Capture) finish(id models.ItemID, err error) {
	c.id = id
	c.err = err
	close(c.done)
}

// CaptureItem inserts a Scanned placeholder for imageRef at the front of the
// collection and starts enrichment in the background. The placeholder is
// visible as soon as CaptureItem returns. Several captures may run at once.
//
// Clear cancels enrichment. Deleting the placeholder discards the result and
// removes whatever record the backend created for it.
func (s *Store) CaptureItem(ctx context.Context, imageRef string) (*Capture, error) {
	s.mu.Lock()
	user, err := s.requireUser(ctx, "capture_item")
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.now().UTC()
	placeholder := models.Item{
		ID:        models.NewPendingID(),
		OwnerID:   user.ID,
		ImageRef:  imageRef,
		Status:    models.StatusScanned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items = append([]models.Item{placeholder}, s.items...)

	cctx, cancel := context.WithCancel(ctx)
	c := &Capture{TempID: placeholder.ID, done: make(chan struct{}), cancel: cancel}
	s.inflight[placeholder.ID] = c
	s.begin()
	s.mu.Unlock()

	s.log.Debug(ctx, "placeholder inserted", "op", "capture_item", "item_id", placeholder.ID.String(), "user_id", user.ID)

	go s.enrich(cctx, c, user.ID, imageRef)
	return c, nil
}

func (s *Store) enrich(ctx context.Context, c *Capture, userID, imageRef string) {
	defer c.cancel()

	var enrichment *models.Enrichment
	payload, err := s.images.Encode(ctx, imageRef)
	if err == nil && !s.abandoned(c) {
		enrichment, err = s.client.DescribeImage(ctx, payload, userID)
	}

	id, orphan, err := s.settle(ctx, c, userID, enrichment, err)
	if orphan != "" {
		s.deleteOrphan(ctx, orphan, c.TempID, userID)
	}
	c.finish(id, err)
}

// abandoned reports whether c's placeholder was deleted or cleared.
func (s *Store) abandoned(c *Capture) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[c.TempID]
	return !ok
}

// settle applies the enrichment outcome to the collection. orphan is set
// when the placeholder was deleted after the backend created its record.
func (s *Store) settle(
	ctx context.Context,
	c *Capture,
	userID string,
	enrichment *models.Enrichment,
	err error,
) (id models.ItemID, orphan string, _ error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	tempID := c.TempID
	_, ok := s.inflight[tempID]
	i := s.indexOf(tempID)
	if !ok || i < 0 {
		delete(s.inflight, tempID)
		if c.deleted && err == nil && enrichment != nil && enrichment.ID != "" {
			orphan = enrichment.ID
			if j := s.indexOf(models.ConfirmedID(orphan)); j >= 0 {
				s.removeAt(j)
			}
		}
		return models.ItemID{}, orphan, common.ErrDiscarded
	}
	delete(s.inflight, tempID)

	if err != nil {
		s.removeAt(i)
		s.log.Error(ctx, "enrichment failed", "op", "capture_item", "item_id", tempID.String(), "user_id", userID, "error", err)
		s.err = err
		return models.ItemID{}, "", err
	}

	item := s.items[i]
	item.ID = models.ConfirmedID(enrichment.ID)
	if enrichment.ImageURL != "" {
		item.ImageRef = enrichment.ImageURL
	}
	item.Title = enrichment.Title
	item.Description = enrichment.Description
	item.Condition = enrichment.Condition
	item.Category = enrichment.Category
	item.EstimatedPrice = enrichment.EstimatedPrice
	item.PriceSampleCount = enrichment.PriceSampleCount
	item.TotalAvailableCount = enrichment.TotalAvailableCount
	item.UpdatedAt = s.now().UTC()
	s.items[i] = item

	// A concurrent load may already hold the confirmed record.
	for j := len(s.items) - 1; j >= 0; j-- {
		if j != i && s.items[j].ID == item.ID {
			s.removeAt(j)
		}
	}

	s.log.Info(ctx, "item enriched", "op", "capture_item", "item_id", item.ID.String(), "temp_id", tempID.String(), "user_id", userID)
	return item.ID, "", nil
}

// deleteOrphan removes the backend record of a placeholder the user already
// deleted. Failures are logged only.
func (s *Store) deleteOrphan(ctx context.Context, productID string, tempID models.ItemID, userID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.client.DeleteProduct(ctx, productID); err != nil {
		s.log.Error(ctx, "orphaned record not deleted", "op", "delete_item", "item_id", productID, "temp_id", tempID.String(), "user_id", userID, "error", err)
		return
	}
	s.log.Debug(ctx, "orphaned record deleted", "op", "delete_item", "item_id", productID, "temp_id", tempID.String())
}
