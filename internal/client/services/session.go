// Package services contains application services for the QuickFlip client.
// This file defines the session service: sign-in against the backend,
// restoring the persisted user at start-up, and sign-out.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/quickflip/internal/client/client"
	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/quickflip/internal/client/store"
	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/dmitrijs2005/quickflip/internal/dbx"
	"github.com/dmitrijs2005/quickflip/internal/logging"
)

// signedInAtKey records when the persisted user last signed in.
const signedInAtKey = "signed_in_at"

var ErrEmailRequired = errors.New("email is required")

// SessionService binds a backend user to the item store.
//
// Contract:
//   - SignIn: create or fetch the user, persist it locally, load its items.
//   - Restore: reuse the persisted user; common.ErrNotAuthenticated if none.
//   - SignOut: forget the persisted user and clear the store.
//
// A failed item load does not fail SignIn or Restore; it is reported
// through the store's State.
type SessionService interface {
	SignIn(ctx context.Context, email, fullName string) (*models.User, error)
	Restore(ctx context.Context) (*models.User, error)
	SignOut(ctx context.Context) error
	Current() *models.User
}

type sessionService struct {
	client client.Client
	store  *store.Store
	db     *sql.DB
	log    logging.Logger
	now    func() time.Time
}

func NewSessionService(c client.Client, st *store.Store, db *sql.DB, log logging.Logger) SessionService {
	return &sessionService{
		client: c,
		store:  st,
		db:     db,
		log:    log.With("component", "session"),
		now:    time.Now,
	}
}

func (s *sessionService) SignIn(ctx context.Context, email, fullName string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	u, err := s.client.CreateOrGetUser(ctx, email, strings.TrimSpace(fullName))
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if err := s.persist(ctx, u); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.store.Clear()
	s.store.SetUser(u)
	s.log.Info(ctx, "signed in", "user_id", u.ID)
	s.load(ctx, u)
	return u, nil
}

func (s *sessionService) Restore(ctx context.Context) (*models.User, error) {
	rec, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.UserMetadataKey)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var u models.User
	if err := json.Unmarshal(rec.Value, &u); err != nil || u.ID == "" {
		s.log.Warn(ctx, "discarding unreadable session", "error", err)
		return nil, common.ErrNotAuthenticated
	}

	s.store.SetUser(&u)
	s.log.Info(ctx, "session restored", "user_id", u.ID, "saved_at", rec.UpdatedAt)
	s.load(ctx, &u)
	return &u, nil
}

func (s *sessionService) SignOut(ctx context.Context) error {
	s.store.Clear()
	s.store.SetUser(nil)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, common.UserMetadataKey); err != nil {
			return err
		}
		return repo.Delete(ctx, signedInAtKey)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info(ctx, "signed out")
	return nil
}

func (s *sessionService) Current() *models.User {
	return s.store.User()
}

// persist stores the user record and sign-in time in one transaction.
func (s *sessionService) persist(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	at := []byte(s.now().UTC().Format(time.RFC3339))

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.UserMetadataKey, data); err != nil {
			return err
		}
		return repo.Set(ctx, signedInAtKey, at)
	})
}

func (s *sessionService) load(ctx context.Context, u *models.User) {
	if err := s.store.LoadAll(ctx); err != nil && !store.IsDiscarded(err) {
		s.log.Warn(ctx, "initial load failed", "user_id", u.ID, "error", err)
	}
}
