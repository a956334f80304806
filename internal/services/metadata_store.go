package services

import (
	"context"
	"errors"
	"time"

	"github.com/speedrun/backend/internal/models"
	"gorm.io/gorm"
)

// MetadataStore is the structured record store holding asset metadata.
// Records are addressed by (id, partitionKey); this service always uses the
// type discriminator as partition key.
type MetadataStore interface {
	GetByID(ctx context.Context, id, partitionKey string) (*models.Asset, error)
	QueryByID(ctx context.Context, id string) (*models.Asset, error)
	DeleteByID(ctx context.Context, id, partitionKey string) error
	// Replace overwrites the record only if its stored version still equals
	// expectedVersion, and bumps the version on success.
	Replace(ctx context.Context, id, partitionKey string, record *models.Asset, expectedVersion int64) error
}

// GormMetadataStore implements MetadataStore on a single gorm table.
type GormMetadataStore struct {
	db    *gorm.DB
	table string
}

func NewGormMetadataStore(db *gorm.DB, table string) *GormMetadataStore {
	return &GormMetadataStore{db: db, table: table}
}

func (s *GormMetadataStore) GetByID(ctx context.Context, id, partitionKey string) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).Table(s.table).
		Where("id = ? AND type = ?", id, partitionKey).
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "read metadata", Err: err}
	}
	return &asset, nil
}

func (s *GormMetadataStore) QueryByID(ctx context.Context, id string) (*models.Asset, error) {
	var assets []models.Asset
	err := s.db.WithContext(ctx).Table(s.table).
		Where("id = ? AND type = ?", id, models.AssetTypeVideo).
		Limit(1).
		Find(&assets).Error
	if err != nil {
		return nil, &StoreError{Op: "query metadata", Err: err}
	}
	if len(assets) == 0 {
		return nil, ErrNotFound
	}
	return &assets[0], nil
}

func (s *GormMetadataStore) DeleteByID(ctx context.Context, id, partitionKey string) error {
	res := s.db.WithContext(ctx).Table(s.table).
		Where("id = ? AND type = ?", id, partitionKey).
		Delete(&models.Asset{})
	if res.Error != nil {
		return &StoreError{Op: "delete metadata", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormMetadataStore) Replace(ctx context.Context, id, partitionKey string, record *models.Asset, expectedVersion int64) error {
	res := s.db.WithContext(ctx).Table(s.table).
		Where("id = ? AND type = ? AND version = ?", id, partitionKey, expectedVersion).
		Updates(map[string]interface{}{
			"file_path":  record.FilePath,
			"file_name":  record.FileName,
			"comments":   record.Comments,
			"version":    expectedVersion + 1,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return &StoreError{Op: "replace metadata", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	record.Version = expectedVersion + 1
	return nil
}
