package documents

import (
	"context"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists product documents.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the document.
func (r *Repository) Create(ctx context.Context, doc *models.ProductDocument) (*models.ProductDocument, error) {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// ListByProduct returns the product's documents, oldest first.
func (r *Repository) ListByProduct(ctx context.Context, productID int64) ([]models.ProductDocument, error) {
	var rows []models.ProductDocument
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("doc_id").
		Find(&rows).
		Error
	return rows, err
}
