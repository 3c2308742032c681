package orders

import (
	"context"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/pagination"
	"gorm.io/gorm"
)

const ordersByDateRangeQuery = `
SELECT o.order_id,
       o.order_no,
       o.order_date,
       o.total_amount,
       COUNT(d.detail_id) AS line_count
  FROM production_orders o
  LEFT JOIN order_details d ON d.order_id = o.order_id
 WHERE o.order_date BETWEEN to_date(?, 'YYYY-MM-DD') AND to_date(?, 'YYYY-MM-DD')
 GROUP BY o.order_id, o.order_no, o.order_date, o.total_amount
 ORDER BY o.order_date, o.order_id
`

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.ProductionOrder) (*models.ProductionOrder, error) {
	if err := r.db.WithContext(ctx).Omit("Details").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateDetail(ctx context.Context, detail *models.OrderDetail) (*models.OrderDetail, error) {
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID int64) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("detail_id")
		}).
		First(&order, "order_id = ?", orderID).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns up to limit orders after cursor ordered by
// (created_at DESC, order_id DESC).
func (r *repository) ListOrders(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.ProductionOrder, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProductionOrder{}).
		Order("created_at DESC").
		Order("order_id DESC").
		Limit(limit)
	if cursor != nil {
		clause, args := cursor.After("created_at", "order_id")
		query = query.Where(clause, args...)
	}
	var rows []models.ProductionOrder
	err := query.Find(&rows).Error
	return rows, err
}

func (r *repository) FindByDateRange(ctx context.Context, startDate, endDate string) ([]OrderSummaryRow, error) {
	var rows []OrderSummaryRow
	err := r.db.WithContext(ctx).Raw(ordersByDateRangeQuery, startDate, endDate).Scan(&rows).Error
	return rows, err
}
