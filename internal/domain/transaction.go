package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType enumerates the kinds of ledger entries.
type TxType string

const (
	TxFund     TxType = "fund"     // Deposit into a wallet, no source wallet
	TxWithdraw TxType = "withdraw" // Withdrawal out of a wallet, no destination wallet
	TxTransfer TxType = "transfer" // Wallet to wallet
)

// Valid reports whether t is one of the known transaction types.
func (t TxType) Valid() bool {
	switch t {
	case TxFund, TxWithdraw, TxTransfer:
		return true
	}
	return false
}

// Transaction Model. Rows are append-only.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                        // Sequence id
	FromWalletID *string         `gorm:"type:char(36);index" json:"from_wallet_id"`   // Source wallet, nil for funding
	ToWalletID   *string         `gorm:"type:char(36);index" json:"to_wallet_id"`     // Destination wallet, nil for withdrawals
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`   // Always positive
	Type         TxType          `gorm:"type:varchar(16);not null;index" json:"type"` // fund, withdraw or transfer
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`            // Creation time
}
