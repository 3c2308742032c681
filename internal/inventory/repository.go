package inventory

import (
	"context"
	"database/sql"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Availability is the tri-state answer of the check_product_available routine.
type Availability int

const (
	// AvailabilityUnknown means the product has no inventory record.
	AvailabilityUnknown Availability = iota
	AvailabilityAvailable
	AvailabilityUnavailable
)

func (a Availability) String() string {
	switch a {
	case AvailabilityAvailable:
		return "available"
	case AvailabilityUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

const mergeInventorySQL = `
MERGE INTO inventory AS i
USING (SELECT CAST(? AS BIGINT) AS product_id, CAST(? AS INTEGER) AS quantity) AS s
   ON i.product_id = s.product_id
 WHEN MATCHED THEN
      UPDATE SET quantity = i.quantity + s.quantity, updated_at = now()
 WHEN NOT MATCHED THEN
      INSERT (product_id, quantity, updated_at)
      VALUES (s.product_id, s.quantity, now())
`

// Repository persists inventory records.
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

// FindByProductID returns gorm.ErrRecordNotFound when the product has no record.
func (r *Repository) FindByProductID(ctx context.Context, productID int64) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert writes quantity and location for the record's product, inserting
// the row when absent.
func (r *Repository) Upsert(ctx context.Context, record *models.InventoryRecord) (*models.InventoryRecord, error) {
	record.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "location", "updated_at"}),
		}).
		Create(record).Error
	if err != nil {
		return nil, err
	}
	return r.FindByProductID(ctx, record.ProductID)
}

// Merge adds quantity to the product's record or creates one holding quantity.
func (r *Repository) Merge(ctx context.Context, productID int64, quantity int) error {
	return r.db.WithContext(ctx).Exec(mergeInventorySQL, productID, quantity).Error
}

// Decrement subtracts quantity from the product's record and reports how many
// rows changed. When conditional is set the update only applies while the
// stored quantity covers the request.
func (r *Repository) Decrement(ctx context.Context, productID int64, quantity int, conditional bool) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InventoryRecord{}).
		Where("product_id = ?", productID)
	if conditional {
		query = query.Where("quantity >= ?", quantity)
	}
	res := query.Updates(map[string]any{
		"quantity":   gorm.Expr("quantity - ?", quantity),
		"updated_at": time.Now().UTC(),
	})
	return res.RowsAffected, res.Error
}

// CheckAvailable asks the check_product_available routine whether quantity
// can be served.
func (r *Repository) CheckAvailable(ctx context.Context, productID int64, quantity int) (Availability, error) {
	var answer sql.NullInt64
	err := r.db.WithContext(ctx).
		Raw("SELECT check_product_available(?, ?)", productID, quantity).
		Row().
		Scan(&answer)
	if err != nil {
		return AvailabilityUnknown, err
	}
	return availabilityFromRoutine(answer), nil
}

func availabilityFromRoutine(answer sql.NullInt64) Availability {
	switch {
	case !answer.Valid:
		return AvailabilityUnknown
	case answer.Int64 == 1:
		return AvailabilityAvailable
	default:
		return AvailabilityUnavailable
	}
}
