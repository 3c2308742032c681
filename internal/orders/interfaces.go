package orders

import (
	"context"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for production orders and their
// line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.ProductionOrder) (*models.ProductionOrder, error)
	CreateDetail(ctx context.Context, detail *models.OrderDetail) (*models.OrderDetail, error)
	FindOrder(ctx context.Context, orderID int64) (*models.ProductionOrder, error)
	ListOrders(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.ProductionOrder, error)
	FindByDateRange(ctx context.Context, startDate, endDate string) ([]OrderSummaryRow, error)
}

// ProductLookup resolves the product a line item references.
type ProductLookup interface {
	FindProduct(ctx context.Context, tx *gorm.DB, productID int64) (*models.Product, error)
}

// InventoryStore reads and decrements inventory records inside the order
// transaction.
type InventoryStore interface {
	// FindRecord returns nil without error when the product has no record.
	FindRecord(ctx context.Context, tx *gorm.DB, productID int64) (*models.InventoryRecord, error)
	Decrement(ctx context.Context, tx *gorm.DB, productID int64, quantity int, conditional bool) (int64, error)
}

// AvailabilityOracle answers whether quantity of a product can be served.
type AvailabilityOracle interface {
	CheckAvailable(ctx context.Context, tx *gorm.DB, productID int64, quantity int) (inventory.Availability, error)
}

// TotalCalculator recomputes and stores an order's total amount.
type TotalCalculator interface {
	RecalculateTotal(ctx context.Context, tx *gorm.DB, orderID int64) (decimal.Decimal, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
