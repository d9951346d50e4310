package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet Model
type Wallet struct {
	ID        string          `gorm:"primaryKey;type:char(36)" json:"id"`                   // UUID
	UserID    string          `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"`    // Owning user, one wallet per user
	Balance   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"` // Never negative
	CreatedAt time.Time       `json:"created_at"`                                           // Creation time
	UpdatedAt time.Time       `json:"updated_at"`                                           // Last balance change
}

// CanCover reports whether the wallet holds at least amount.
func (w *Wallet) CanCover(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
