package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPersister stores the blob in the app_data_stores table.
type GormPersister struct {
	db  *gorm.DB
	key string
}

// NewGormPersister migrates the blob table and returns a persister bound to key.
func NewGormPersister(db *gorm.DB, key string) (*GormPersister, error) {
	if db == nil {
		return nil, errors.New("gorm persister: database is required")
	}
	if err := db.AutoMigrate(&models.DataStoreBlob{}); err != nil {
		return nil, fmt.Errorf("migrate app_data_stores: %w", err)
	}
	return &GormPersister{db: db, key: key}, nil
}

func (g *GormPersister) Load() ([]byte, error) {
	var blob models.DataStoreBlob
	err := g.db.First(&blob, "key = ?", g.key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(blob.Value), nil
}

func (g *GormPersister) Save(blob []byte) error {
	row := models.DataStoreBlob{
		Key:       g.key,
		Value:     datatypes.JSON(blob),
		UpdatedAt: time.Now(),
	}
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the connection pool is owned by the database package.
func (g *GormPersister) Close() error { return nil }
