// Package store persists users, wallets and ledger entries with GORM.
//
// A Store is bound to one *gorm.DB handle. Inside Transaction the callback receives a
// Store bound to the open transaction; every read and write made through it joins the
// same unit of work.
package store

import (
	"context"
	"errors"
	"time"

	"demo_wallet/internal/domain"

	"gorm.io/gorm"
)

// Store groups the per-entity stores over one database handle.
type Store struct {
	db      *gorm.DB
	Users   *UserStore
	Wallets *WalletStore
	Ledger  *LedgerStore
}

// New returns a Store over db.
func New(db *gorm.DB) *Store {
	return newStore(handle{db: db})
}

func newStore(h handle) *Store {
	return &Store{
		db:      h.db,
		Users:   &UserStore{h},
		Wallets: &WalletStore{h},
		Ledger:  &LedgerStore{h},
	}
}

// handle is what every entity store queries through. Inside a unit of work txCtx holds
// the transaction's context, deadline included, and callers' contexts are ignored.
type handle struct {
	db    *gorm.DB
	txCtx context.Context
}

func (h handle) conn(ctx context.Context) *gorm.DB {
	if h.txCtx != nil {
		return h.db.WithContext(h.txCtx)
	}
	return h.db.WithContext(ctx)
}

// DB exposes the underlying handle for health checks and tests.
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn as one unit of work bounded by timeout. Returning an error from
// fn rolls back every effect. Every query made through tx carries the deadline, so a
// lock wait that outlives it fails with a retryable DatabaseError, as does failing to
// begin or commit in time. Errors returned by fn pass through unchanged.
func (s *Store) Transaction(ctx context.Context, timeout time.Duration, fn func(tx *Store) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(newStore(handle{db: tx, txCtx: ctx}))
		return fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil && errors.Is(err, fnErr) {
		return domain.Wrap(fnErr, "unit of work failed")
	}
	return domain.Database("unit of work failed", err)
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(what)
	}
	return domain.Database("load "+what, err)
}
