package db

import (
	"fmt" // Error wrapping

	"demo_wallet/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Models lists every table in migration order: users before wallets before transactions
var Models = []any{&domain.User{}, &domain.Wallet{}, &domain.Transaction{}}

// Migrate performs automatic migration for the database schema
func Migrate(gdb *gorm.DB, log logrus.FieldLogger) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := gdb.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Migration completed.") // Log successful migration
	return nil
}
