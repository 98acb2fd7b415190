package repositories

import (
	"database/sql"
	"time"

	"judicial-archive/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

func gormConfig(log *zap.Logger) *gorm.Config {
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}
	if log != nil {
		cfg.Logger = logger.New(
			zap.NewStdLog(log),
			logger.Config{LogLevel: logger.Warn, IgnoreRecordNotFoundError: true},
		)
	}
	return cfg
}

func ConnectPostgres(cfg config.Config, log *zap.Logger) (*DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig(log))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &DB{Gorm: db, SQL: sqlDB}, nil
}
