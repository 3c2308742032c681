package products

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"gorm.io/gorm"
)

const productsWithoutInventoryQuery = `
SELECT p.*
  FROM products p
 WHERE p.product_id IN (
       SELECT product_id FROM products
       EXCEPT
       SELECT product_id FROM inventory
 )
 ORDER BY p.product_id
`

const productsWithInventoryQuery = `
SELECT p.product_id,
       p.product_code,
       p.product_name,
       p.unit_price,
       i.quantity,
       i.location
  FROM products p
  LEFT JOIN inventory i ON i.product_id = p.product_id
 ORDER BY p.product_id
`

// Repository wires together the product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetDetail loads the product with its inventory record.
func (r *Repository) GetDetail(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		First(&product, "product_id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns every product ordered by identity.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).Order("product_id").Find(&rows).Error
	return rows, err
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Search composes the query from whichever filters are set.
// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *Repository) Search(ctx context.Context, filters SearchFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if name := strings.TrimSpace(filters.Name); name != "" {
		query = query.Where(`LOWER(product_name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(name))+"%")
	}
	if filters.MinPrice != nil {
		query = query.Where("unit_price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("unit_price <= ?", *filters.MaxPrice)
	}

	var rows []models.Product
	err := query.Order("product_id").Find(&rows).Error
	return rows, err
}

// CreatedToday lists products created since the database's current date began.
func (r *Repository) CreatedToday(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("created_at >= CURRENT_DATE AND created_at < CURRENT_DATE + INTERVAL '1 day'").
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// TopByPrice returns the limit most expensive products.
func (r *Repository) TopByPrice(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("unit_price DESC").
		Order("product_id").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// WithoutInventory returns products that have no inventory record, computed
// as a set difference.
func (r *Repository) WithoutInventory(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).Raw(productsWithoutInventoryQuery).Scan(&rows).Error
	return rows, err
}

// WithInventory returns every product joined to its inventory record, if any.
func (r *Repository) WithInventory(ctx context.Context) ([]ProductInventoryRow, error) {
	var rows []ProductInventoryRow
	err := r.db.WithContext(ctx).Raw(productsWithInventoryQuery).Scan(&rows).Error
	return rows, err
}

// NextSequenceValue advances the named sequence. Callers must restrict name
// to known sequences.
func (r *Repository) NextSequenceValue(ctx context.Context, name string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval(CAST(? AS regclass))", name).
		Row().
		Scan(&value)
	return value, err
}

// Status returns the decoded status label from get_product_status. The result
// is invalid when the product does not exist.
func (r *Repository) Status(ctx context.Context, id int64) (sql.NullString, error) {
	var status sql.NullString
	err := r.db.WithContext(ctx).
		Raw("SELECT get_product_status(?)", id).
		Row().
		Scan(&status)
	return status, err
}
