package orders

import (
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/shopspring/decimal"
)

// CreateOrderInput carries the order header and requested line items, which
// are processed in the given order.
type CreateOrderInput struct {
	OrderNo string
	Notes   *string
	Items   []LineItemInput
}

// LineItemInput requests quantity units of a product.
type LineItemInput struct {
	ProductID int64
	Quantity  int
}

// OrderList is one page of production orders, newest first.
type OrderList struct {
	Orders     []models.ProductionOrder `json:"orders"`
	NextCursor string                   `json:"next_cursor,omitempty"`
}

// OrderSummaryRow is returned by the date range search.
type OrderSummaryRow struct {
	OrderID     int64           `gorm:"column:order_id" json:"order_id"`
	OrderNo     string          `gorm:"column:order_no" json:"order_no"`
	OrderDate   time.Time       `gorm:"column:order_date" json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
	LineCount   int64           `gorm:"column:line_count" json:"line_count"`
}
