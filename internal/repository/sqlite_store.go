package repository

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	customerrors "github.com/axellelanca/urlregistry/internal/errors"
	"github.com/axellelanca/urlregistry/internal/models"
)

// SQLiteStore persists the collection in the short_urls and clicks tables using GORM.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the sqlite database file at name.
func OpenSQLite(name string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate executes GORM automatic migrations for the registry tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ShortURLModel{}, &ClickModel{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// NewSQLiteStore creates a SQLiteStore on db and makes sure the schema exists.
func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads every record with its clicks, in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.ShortURL, error) {
	var rows []ShortURLModel
	err := s.db.WithContext(ctx).
		Preload("Clicks", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return []models.ShortURL{}, &customerrors.PersistenceError{Op: "load", Err: err}
	}

	records := make([]models.ShortURL, len(rows))
	for i := range rows {
		records[i] = rows[i].toCore()
	}
	return records, nil
}

// Save replaces both tables' content inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []models.ShortURL) error {
	rows := make([]ShortURLModel, len(records))
	for i := range records {
		rows[i] = fromCore(i, &records[i])
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ClickModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear clicks: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&ShortURLModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear short urls: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("failed to insert short urls: %w", err)
		}
		return nil
	})
	if err != nil {
		return &customerrors.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Close closes the underlying SQL database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
