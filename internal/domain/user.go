package domain

import "time"

// User Model
type User struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`                  // UUID, doubles as the account number
	Name      string    `gorm:"not null" json:"name"`                                // Display name
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"` // Unique email
	Phone     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"`  // Unique phone number
	Password  string    `gorm:"not null" json:"-"`                                   // bcrypt hash, never serialized
	WalletID  *string   `gorm:"type:char(36);index" json:"wallet_id"`                // Linked wallet, set at the end of onboarding
	CreatedAt time.Time `json:"created_at"`                                          // Creation time
	UpdatedAt time.Time `json:"updated_at"`                                          // Last update time
}
