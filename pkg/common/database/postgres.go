package database

import (
	"fmt"

	"github.com/synaptica-ai/obesity-check/pkg/common/config"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenPostgres connects to the release registry database.
func OpenPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.PostgresHost,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB,
		cfg.PostgresPort,
		cfg.PostgresSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.WithField("host", cfg.PostgresHost).Info("Connected to PostgreSQL")
	return db, nil
}

func ClosePostgres(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
