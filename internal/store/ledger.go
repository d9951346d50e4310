package store

import (
	"context"
	"fmt"

	"demo_wallet/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Page size bounds for history queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// LedgerStore appends and reads transaction records. Records are never updated.
type LedgerStore struct {
	handle
}

// Record appends a ledger entry and returns its id. from and to may be empty only where
// the type allows it: fund has no source, withdraw has no destination.
func (s *LedgerStore) Record(ctx context.Context, from, to string, amount decimal.Decimal, kind domain.TxType) (uint, error) {
	if err := checkEntry(from, to, amount, kind); err != nil {
		return 0, err
	}
	entry := &domain.Transaction{
		FromWalletID: optional(from),
		ToWalletID:   optional(to),
		Amount:       amount,
		Type:         kind,
	}
	if err := s.conn(ctx).Create(entry).Error; err != nil {
		return 0, domain.Database("record transaction", err)
	}
	return entry.ID, nil
}

// ListByWallet returns one page of entries where walletID is source or destination,
// newest first, plus the total count.
func (s *LedgerStore) ListByWallet(ctx context.Context, walletID string, page, pageSize int) ([]domain.Transaction, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := s.conn(ctx).Model(&domain.Transaction{}).
		Where("from_wallet_id = ? OR to_wallet_id = ?", walletID, walletID).
		Session(&gorm.Session{}) // reusable for count and find

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domain.Database("count transactions", err)
	}
	var txs []domain.Transaction
	err := query.Order("created_at desc").Order("id desc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txs).Error
	if err != nil {
		return nil, 0, domain.Database("list transactions", err)
	}
	return txs, total, nil
}

func checkEntry(from, to string, amount decimal.Decimal, kind domain.TxType) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if !kind.Valid() {
		return domain.Validation("invalid ledger entry", fmt.Sprintf("unknown transaction type %q", kind))
	}
	var problem string
	switch kind {
	case domain.TxFund:
		if from != "" || to == "" {
			problem = "fund entries need a destination and no source"
		}
	case domain.TxWithdraw:
		if from == "" || to != "" {
			problem = "withdraw entries need a source and no destination"
		}
	case domain.TxTransfer:
		if from == "" || to == "" || from == to {
			problem = "transfer entries need two distinct wallets"
		}
	}
	if problem != "" {
		return domain.Validation("invalid ledger entry", problem)
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
