package repositories

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite opens (creating if needed) a sqlite database file. Pass
// ":memory:" for a throwaway database.
func OpenSQLite(path string, log *zap.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection also keeps an in-memory
	// database alive and shared.
	sqlDB.SetMaxOpenConns(1)

	return &DB{Gorm: db, SQL: sqlDB}, nil
}
