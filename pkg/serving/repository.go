package serving

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModelRelease records one artifact load. It carries artifact metadata only;
// submissions are never stored.
type ModelRelease struct {
	ID               uuid.UUID         `gorm:"primaryKey;column:id"`
	Version          string            `gorm:"column:version"`
	Algorithm        string            `gorm:"column:algorithm"`
	ModelChecksum    string            `gorm:"column:model_checksum"`
	EncodersChecksum string            `gorm:"column:encoders_checksum"`
	TreeCount        int               `gorm:"column:tree_count"`
	Metadata         datatypes.JSONMap `gorm:"column:metadata"`
	Host             string            `gorm:"column:host"`
	LoadedAt         time.Time         `gorm:"column:loaded_at"`
}

// TableName overrides gorm naming.
func (ModelRelease) TableName() string {
	return "model_releases"
}

// Repository handles model release queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ModelRelease{})
}

// NewRelease describes b as a release row.
func NewRelease(b *Bundle) ModelRelease {
	host, _ := os.Hostname()
	return ModelRelease{
		ID:               uuid.New(),
		Version:          b.Version(),
		Algorithm:        b.Model.Algorithm(),
		ModelChecksum:    b.Model.Checksum(),
		EncodersChecksum: b.Encoders.Checksum(),
		TreeCount:        b.Model.TreeCount(),
		Metadata: datatypes.JSONMap{
			"features": b.Model.FeatureNames(),
			"classes":  b.Encoders.Target().Classes(),
		},
		Host:     host,
		LoadedAt: time.Now().UTC(),
	}
}

func (r *Repository) RecordRelease(ctx context.Context, release ModelRelease) error {
	return r.db.WithContext(ctx).Create(&release).Error
}

// Recent returns the most recent releases up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]ModelRelease, error) {
	if limit <= 0 {
		limit = 20
	}
	var releases []ModelRelease
	err := r.db.WithContext(ctx).
		Order("loaded_at DESC").
		Limit(limit).
		Find(&releases).Error
	return releases, err
}
