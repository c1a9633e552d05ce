package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is a single key-value row managed through gorm
type Entry struct {
	Key       string `gorm:"primaryKey;type:varchar(255)"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table shared with the database/sql backend
func (Entry) TableName() string {
	return "kv_entries"
}

// Gorm is a key-value backend on top of gorm
type Gorm struct {
	db *gorm.DB
}

// NewGorm opens a gorm-managed SQLite database at dbPath
func NewGorm(dbPath string) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewGormWithDB(db)
}

// NewGormWithDB wraps an existing gorm connection and migrates the table
func NewGormWithDB(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv table: %w", err)
	}
	return &Gorm{db: db}, nil
}

// Close closes the underlying connection
func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the value stored under key
func (g *Gorm) Get(key string) ([]byte, bool, error) {
	var e Entry
	err := g.db.Where("key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return e.Value, true, nil
}

// Set upserts the value for key
func (g *Gorm) Set(key string, value []byte) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

// Remove deletes key
func (g *Gorm) Remove(key string) error {
	return g.db.Where("key = ?", key).Delete(&Entry{}).Error
}

// Keys lists every key starting with prefix, sorted
func (g *Gorm) Keys(prefix string) ([]string, error) {
	var keys []string
	err := g.db.Model(&Entry{}).
		Where(`key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Order("key").
		Pluck("key", &keys).Error
	return keys, err
}
