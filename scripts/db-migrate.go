package main

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"

	"github.com/studio-desk/config"
	"github.com/studio-desk/database"
)

func main() {
	config.LoadEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting database migration")

	sourceDBURL := config.GetEnv("SOURCE_DATABASE_URL", "")
	targetDBURL := config.GetEnv("TARGET_DATABASE_URL", "")
	if sourceDBURL == "" || targetDBURL == "" {
		logger.Fatal("SOURCE_DATABASE_URL and TARGET_DATABASE_URL are required")
	}

	sourceDB, err := database.NewDBConnection("source", postgres.Open(sourceDBURL), logger)
	if err != nil {
		logger.Fatal("Failed to connect to source database", zap.Error(err))
	}

	targetDB, err := database.NewDBConnection("target", postgres.Open(targetDBURL), logger)
	if err != nil {
		logger.Fatal("Failed to connect to target database", zap.Error(err))
	}

	// Ensure target database schema is migrated
	if err := targetDB.Migrate(); err != nil {
		logger.Fatal("Failed to migrate target database schema", zap.Error(err))
	}

	if err := database.MigrateDataBetweenDatabases(sourceDB, targetDB); err != nil {
		logger.Fatal("Data migration failed", zap.Error(err))
	}

	logger.Info("Database migration completed successfully")
}
