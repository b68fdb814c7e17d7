// Package store owns the in-memory item collection for the signed-in user.
//
// Every mutation goes to the backend first and is applied locally only on
// success. The one optimistic write is the placeholder inserted by
// CaptureItem, which is later replaced in place by the enriched record or
// removed when enrichment fails.
//
// Remote responses are reconciled strictly by item id. Each id carries a
// sequence counter so a response that was overtaken by a newer one for the
// same id is dropped, and a response for an id that is no longer in the
// collection is a no-op.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/quickflip/internal/client/client"
	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/client/pricing"
	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/dmitrijs2005/quickflip/internal/logging"
)

// ImageSource turns a local image reference into the base64 payload sent to
// the describe endpoint.
type ImageSource interface {
	Encode(ctx context.Context, ref string) (string, error)
}

// State is the shared progress signal. Loading is true while at least one
// operation is in flight. Err holds the last remote failure and is cleared
// when the next operation starts.
type State struct {
	Loading bool
	Err     error
}

// Store is safe for concurrent use.
type Store struct {
	client client.Client
	images ImageSource
	log    logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	user     *models.User
	items    []models.Item
	inflight map[models.ItemID]*Capture
	seq      map[models.ItemID]uint64
	applied  map[models.ItemID]uint64
	epoch    uint64
	gen      uint64
	pending  int
	err      error
}

func New(c client.Client, images ImageSource, log logging.Logger) *Store {
	return &Store{
		client:   c,
		images:   images,
		log:      log.With("component", "store"),
		now:      time.Now,
		inflight: make(map[models.ItemID]*Capture),
		seq:      make(map[models.ItemID]uint64),
		applied:  make(map[models.ItemID]uint64),
	}
}

// SetUser switches the signed-in user. Switching to a different user, or to
// nil, clears the collection.
func (s *Store) SetUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil && (u == nil || u.ID != s.user.ID) {
		s.clearLocked()
	}
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Loading: s.pending > 0, Err: s.err}
}

// Items returns a snapshot of the collection, newest first. An empty status
// returns every item.
func (s *Store) Items(status models.Status) []models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Item, 0, len(s.items))
	for _, it := range s.items {
		if status == "" || it.Status == status {
			out = append(out, it.Clone())
		}
	}
	return out
}

func (s *Store) Get(id models.ItemID) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Item{}, fmt.Errorf("%s: %w", id, common.ErrNotFound)
	}
	return s.items[i].Clone(), nil
}

// Clear empties the collection and cancels every in-flight capture. Results
// of operations started before Clear are discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	for id, c := range s.inflight {
		c.cancel()
		delete(s.inflight, id)
	}
	s.items = nil
	s.seq = make(map[models.ItemID]uint64)
	s.applied = make(map[models.ItemID]uint64)
	s.epoch++
	s.gen++
	s.err = nil
}

// LoadAll replaces the confirmed items with the backend's list. Confirmed
// items are dropped before the request goes out, so a failed load leaves no
// stale records. Placeholders of in-flight captures are kept in front.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	user, err := s.requireUser(ctx, "load_all")
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.epoch++
	epoch := s.epoch
	kept := s.items[:0]
	for _, it := range s.items {
		if it.IsPlaceholder() {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.begin()
	s.mu.Unlock()

	list, err := s.client.ListProducts(ctx, user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if epoch != s.epoch {
		return common.ErrDiscarded
	}
	if err != nil {
		s.log.Error(ctx, "load failed", "op", "load_all", "user_id", user.ID, "error", err)
		s.err = err
		return err
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	// Anything still in the collection was inserted while the request was
	// in flight and is newer than the listing.
	seen := make(map[models.ItemID]bool, len(s.items)+len(list))
	for _, it := range s.items {
		seen[it.ID] = true
	}
	for _, it := range list {
		if it.ID.IsZero() || seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		if it.OwnerID == "" {
			it.OwnerID = user.ID
		}
		s.items = append(s.items, it)
	}

	s.log.Debug(ctx, "items loaded", "op", "load_all", "user_id", user.ID, "count", len(list))
	return nil
}

// UpdateFields sends a partial update and applies the backend's record on
// success. Prices in the patch must be positive, and may only be set for
// the stages that carry them.
func (s *Store) UpdateFields(ctx context.Context, id models.ItemID, patch models.Patch) (*models.Item, error) {
	if patch.IsEmpty() {
		return nil, common.ErrEmptyPatch
	}
	for _, p := range []*float64{patch.EstimatedPrice, patch.PricePaid, patch.PriceSold} {
		if p != nil {
			if err := pricing.CheckAmount(*p); err != nil {
				return nil, err
			}
		}
	}

	check := func(it models.Item) error {
		if patch.PricePaid != nil && it.Status == models.StatusScanned {
			return fmt.Errorf("%w: price paid on a %s item", common.ErrInvalidTransition, it.Status)
		}
		if patch.PriceSold != nil && it.Status != models.StatusSold {
			return fmt.Errorf("%w: price sold on a %s item", common.ErrInvalidTransition, it.Status)
		}
		return nil
	}
	call := func(ctx context.Context) (*models.Item, error) {
		return s.client.UpdateProduct(ctx, id.String(), patch)
	}
	return s.mutate(ctx, "update_fields", id, check, call, nil)
}

// MarkPurchased moves a scanned item to Purchased at the given price.
func (s *Store) MarkPurchased(ctx context.Context, id models.ItemID, pricePaid float64) (*models.Item, error) {
	return s.transition(ctx, "mark_purchased", id, models.StatusPurchased, pricePaid)
}

// MarkSold moves a purchased item to Sold at the given price.
func (s *Store) MarkSold(ctx context.Context, id models.ItemID, priceSold float64) (*models.Item, error) {
	return s.transition(ctx, "mark_sold", id, models.StatusSold, priceSold)
}

func (s *Store) transition(ctx context.Context, op string, id models.ItemID, to models.Status, price float64) (*models.Item, error) {
	if err := pricing.CheckAmount(price); err != nil {
		return nil, err
	}

	check := func(it models.Item) error {
		if !it.Status.CanAdvanceTo(to) {
			return fmt.Errorf("%w: %s to %s", common.ErrInvalidTransition, it.Status, to)
		}
		return nil
	}
	call := func(ctx context.Context) (*models.Item, error) {
		return s.client.UpdateStatus(ctx, id.String(), to, price)
	}
	fix := func(it *models.Item) {
		now := s.now().UTC()
		it.Status = to
		switch to {
		case models.StatusPurchased:
			if it.PricePaid == nil {
				it.PricePaid = models.Float(price)
			}
			if it.PurchasedAt == nil {
				it.PurchasedAt = &now
			}
		case models.StatusSold:
			if it.PriceSold == nil {
				it.PriceSold = models.Float(price)
			}
			if it.SoldAt == nil {
				it.SoldAt = &now
			}
		}
	}
	return s.mutate(ctx, op, id, check, call, fix)
}

// mutate runs one remote update for id. check validates the current item
// before the call; fix adjusts the backend's record before it is applied.
func (s *Store) mutate(
	ctx context.Context,
	op string,
	id models.ItemID,
	check func(models.Item) error,
	call func(context.Context) (*models.Item, error),
	fix func(*models.Item),
) (*models.Item, error) {
	s.mu.Lock()
	user, err := s.requireUser(ctx, op)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", id, common.ErrNotFound)
	}
	if s.items[i].IsPlaceholder() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s is awaiting enrichment", common.ErrInvalidTransition, id)
	}
	if err := check(s.items[i]); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	ticket := s.nextSeq(id)
	gen := s.gen
	s.begin()
	s.mu.Unlock()

	remote, err := call(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if err != nil {
		s.log.Error(ctx, "remote update failed", "op", op, "item_id", id.String(), "user_id", user.ID, "error", err)
		s.err = err
		return nil, err
	}

	if gen != s.gen {
		return nil, common.ErrDiscarded
	}
	i = s.indexOf(id)
	if i < 0 {
		// A reload drops confirmed items until its listing arrives; the id
		// keeps its counter unless the item was deleted.
		if _, tracked := s.seq[id]; !tracked || !s.accept(id, ticket) {
			s.log.Debug(ctx, "item removed before update completed", "op", op, "item_id", id.String())
			return nil, common.ErrDiscarded
		}
		it := remote.Clone()
		it.ID = id
		if it.OwnerID == "" {
			it.OwnerID = user.ID
		}
		if fix != nil {
			fix(&it)
		}
		s.insertConfirmed(it)
		out := it.Clone()
		return &out, nil
	}
	if !s.accept(id, ticket) {
		s.log.Debug(ctx, "stale update dropped", "op", op, "item_id", id.String(), "seq", ticket)
		cur := s.items[i].Clone()
		return &cur, nil
	}

	merged := merge(s.items[i], *remote)
	if fix != nil {
		fix(&merged)
	}
	s.items[i] = merged

	out := merged.Clone()
	return &out, nil
}

// DeleteItem removes an item. A confirmed item is removed locally only after
// the backend confirms the deletion. A placeholder is removed at once; if its
// enrichment later returns a backend id, that record is deleted too.
func (s *Store) DeleteItem(ctx context.Context, id models.ItemID) error {
	s.mu.Lock()
	user, err := s.requireUser(ctx, "delete_item")
	if err != nil {
		s.mu.Unlock()
		return err
	}
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", id, common.ErrNotFound)
	}
	if id.IsPending() {
		// The describe request is left to finish so the record it creates
		// can be deleted on the backend.
		if c, ok := s.inflight[id]; ok {
			c.deleted = true
			delete(s.inflight, id)
		}
		s.removeAt(i)
		s.mu.Unlock()
		s.log.Debug(ctx, "placeholder removed", "op", "delete_item", "item_id", id.String())
		return nil
	}
	s.nextSeq(id)
	s.begin()
	s.mu.Unlock()

	err = s.client.DeleteProduct(ctx, id.String())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--

	if err != nil {
		s.log.Error(ctx, "remote delete failed", "op", "delete_item", "item_id", id.String(), "user_id", user.ID, "error", err)
		s.err = err
		return err
	}
	if i := s.indexOf(id); i >= 0 {
		s.removeAt(i)
	}
	delete(s.seq, id)
	delete(s.applied, id)
	return nil
}

// requireUser must be called with s.mu held. A missing user is recorded as
// the shared error.
func (s *Store) requireUser(ctx context.Context, op string) (*models.User, error) {
	if s.user == nil {
		s.log.Warn(ctx, "no authenticated user", "op", op)
		s.err = common.ErrNotAuthenticated
		return nil, common.ErrNotAuthenticated
	}
	return s.user, nil
}

// begin marks an operation as started. Caller holds s.mu.
func (s *Store) begin() {
	s.pending++
	s.err = nil
}

func (s *Store) nextSeq(id models.ItemID) uint64 {
	s.seq[id]++
	return s.seq[id]
}

// accept reports whether ticket is newer than the last applied response for
// id, and records it if so.
func (s *Store) accept(id models.ItemID, ticket uint64) bool {
	if ticket <= s.applied[id] {
		return false
	}
	s.applied[id] = ticket
	return true
}

func (s *Store) indexOf(id models.ItemID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// insertConfirmed places it after the placeholders, keeping confirmed items
// newest first.
func (s *Store) insertConfirmed(it models.Item) {
	i := 0
	for ; i < len(s.items); i++ {
		cur := s.items[i]
		if !cur.IsPlaceholder() && cur.CreatedAt.Before(it.CreatedAt) {
			break
		}
	}
	s.items = slices.Insert(s.items, i, it)
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

// merge applies the backend's record over local. Status never moves
// backwards: if the backend reports an earlier stage, the local lifecycle
// fields are kept. A stage's price and timestamp missing from the backend's
// record are taken from local.
func merge(local, remote models.Item) models.Item {
	out := remote.Clone()
	l := local.Clone()
	out.ID = local.ID
	if out.OwnerID == "" {
		out.OwnerID = local.OwnerID
	}
	if out.ImageRef == "" {
		out.ImageRef = local.ImageRef
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = local.CreatedAt
	}
	if !out.Status.Valid() || out.Status.Before(local.Status) {
		out.Status = l.Status
		out.PricePaid = l.PricePaid
		out.PriceSold = l.PriceSold
		out.PurchasedAt = l.PurchasedAt
		out.SoldAt = l.SoldAt
		return out
	}
	if out.Status != models.StatusScanned {
		if out.PricePaid == nil {
			out.PricePaid = l.PricePaid
		}
		if out.PurchasedAt == nil {
			out.PurchasedAt = l.PurchasedAt
		}
	}
	if out.Status == models.StatusSold {
		if out.PriceSold == nil {
			out.PriceSold = l.PriceSold
		}
		if out.SoldAt == nil {
			out.SoldAt = l.SoldAt
		}
	}
	return out
}

// IsDiscarded reports whether err only signals a dropped result.
func IsDiscarded(err error) bool {
	return errors.Is(err, common.ErrDiscarded)
}
