package specs

import (
	"context"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists XML product specifications.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the spec. Postgres parses spec_xml on insert and rejects
// malformed documents.
func (r *Repository) Create(ctx context.Context, spec *models.ProductSpec) (*models.ProductSpec, error) {
	if err := r.db.WithContext(ctx).Create(spec).Error; err != nil {
		return nil, err
	}
	return spec, nil
}

// ListByProduct returns the product's specs, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID int64) ([]models.ProductSpec, error) {
	var rows []models.ProductSpec
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("spec_id DESC").
		Find(&rows).
		Error
	return rows, err
}
