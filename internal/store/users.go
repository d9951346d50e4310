package store

import (
	"context"
	"errors"
	"strings"

	"demo_wallet/internal/domain"

	"gorm.io/gorm"
)

// UserStore persists user records.
type UserStore struct {
	handle
}

// Create inserts user. A unique-key violation on email or phone is a ConflictError.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := s.conn(ctx).Omit("WalletID").Create(user).Error; err != nil {
		if isDuplicate(err) {
			return domain.Conflict("email or phone already registered")
		}
		return domain.Database("create user", err)
	}
	return nil
}

// GetByID loads a user by id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.conn(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// GetByEmail loads a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.conn(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// ExistsBy reports whether a user with column = value exists. column is one of the
// unique user columns.
func (s *UserStore) ExistsBy(ctx context.Context, column, value string) (bool, error) {
	switch column {
	case "email", "phone":
	default:
		return false, domain.Database("exists", errors.New("unsupported column "+column))
	}
	var count int64
	err := s.conn(ctx).Model(&domain.User{}).Where(column+" = ?", value).Count(&count).Error
	if err != nil {
		return false, domain.Database("count users", err)
	}
	return count > 0, nil
}

// LinkWallet records walletID on the user row.
func (s *UserStore) LinkWallet(ctx context.Context, userID, walletID string) error {
	res := s.conn(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("wallet_id", walletID)
	if res.Error != nil {
		return domain.Database("link wallet", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user")
	}
	return nil
}

// isDuplicate recognizes unique-key violations. Drivers without error translation are
// matched on their message.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite, then mysql, then postgres wording
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
