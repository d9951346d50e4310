package store

import (
	"context"
	"sort"

	"demo_wallet/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletStore reads and mutates wallet balances.
type WalletStore struct {
	handle
}

// Create inserts a zero-balance wallet for userID.
func (s *WalletStore) Create(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet := &domain.Wallet{ID: uuid.NewString(), UserID: userID, Balance: decimal.Zero}
	if err := s.conn(ctx).Create(wallet).Error; err != nil {
		if isDuplicate(err) {
			return nil, domain.Conflict("user already has a wallet")
		}
		return nil, domain.Database("create wallet", err)
	}
	return wallet, nil
}

// GetByID reads a wallet from the store.
func (s *WalletStore) GetByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.conn(ctx).Where("id = ?", walletID).First(&wallet).Error; err != nil {
		return nil, notFoundOr(err, "wallet")
	}
	return &wallet, nil
}

// GetByUser reads the wallet owned by userID.
func (s *WalletStore) GetByUser(ctx context.Context, userID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.conn(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, notFoundOr(err, "wallet")
	}
	return &wallet, nil
}

// Lock takes row locks on the given wallets in ascending id order, so two transfers
// touching the same pair cannot deadlock. It must run inside a transaction.
func (s *WalletStore) Lock(ctx context.Context, walletIDs ...string) (map[string]*domain.Wallet, error) {
	ids := append([]string(nil), walletIDs...)
	sort.Strings(ids)
	locked := make(map[string]*domain.Wallet, len(ids))
	for _, id := range ids {
		if _, seen := locked[id]; seen {
			continue
		}
		wallet, err := s.lockOne(s.conn(ctx), id)
		if err != nil {
			return nil, err
		}
		locked[id] = wallet
	}
	return locked, nil
}

// Increment adds amount to the wallet balance and returns the new balance.
func (s *WalletStore) Increment(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return s.apply(ctx, walletID, func(balance decimal.Decimal) (decimal.Decimal, error) {
		return balance.Add(amount), nil
	})
}

// Decrement subtracts amount from the wallet balance and returns the new balance. The
// sufficiency check runs against the row as locked by this transaction, never against
// an earlier read.
func (s *WalletStore) Decrement(ctx context.Context, walletID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return s.apply(ctx, walletID, func(balance decimal.Decimal) (decimal.Decimal, error) {
		if balance.LessThan(amount) {
			return decimal.Zero, domain.ErrInsufficientFunds
		}
		return balance.Sub(amount), nil
	})
}

// apply runs lock, compute and write in one transaction. When s is already bound to a
// transaction GORM nests it as a savepoint and the row lock is held until the outer
// commit.
func (s *WalletStore) apply(ctx context.Context, walletID string, next func(decimal.Decimal) (decimal.Decimal, error)) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := s.lockOne(tx, walletID)
		if err != nil {
			return err
		}
		balance, err = next(wallet.Balance)
		if err != nil {
			return err
		}
		res := tx.Model(&domain.Wallet{}).Where("id = ?", walletID).Update("balance", balance)
		if res.Error != nil {
			return domain.Database("update balance", res.Error)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, domain.Wrap(err, "update balance")
	}
	return balance, nil
}

func (s *WalletStore) lockOne(tx *gorm.DB, walletID string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := lockQuery(tx, walletID).First(&wallet).Error; err != nil {
		return nil, notFoundOr(err, "wallet")
	}
	return &wallet, nil
}

// lockQuery selects one wallet row FOR UPDATE. The SQLite dialect drops the clause.
func lockQuery(tx *gorm.DB, walletID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", walletID)
}
