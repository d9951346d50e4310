package main

import (
	"demo_wallet/internal/config" // Custom import path (Config)
	"demo_wallet/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.StandardLogger()

	gdb, err := db.Open(cfg, log)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb, log); err != nil {
		log.Fatalf("%v", err)
	}
}
