package db

import (
	"fmt"  // Error wrapping
	"time" // Pool durations

	"demo_wallet/internal/config" // Database settings

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/driver/postgres"    // PostgreSQL driver for GORM
	"gorm.io/driver/sqlite"      // SQLite driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/logger"        // GORM logger
)

// Dialector picks the GORM driver for the configured database
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Open connects to the configured database and applies pool limits
func Open(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	level := logger.Warn // Only slow queries and errors by default
	if cfg.IsProd {
		level = logger.Error
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // Map unique violations to gorm.ErrDuplicatedKey
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)       // Maximum number of open connections
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)       // Maximum number of idle connections
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime) // Maximum lifetime of a connection
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)      // Maximum idle time for a connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", cfg.DBDriver, err)
	}
	log.WithFields(logrus.Fields{
		"driver":         cfg.DBDriver,
		"max_open_conns": cfg.DBMaxOpenConns,
	}).Info("Database connected")
	return gdb, nil
}
