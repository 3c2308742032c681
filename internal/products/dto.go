package products

import (
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
	"github.com/shopspring/decimal"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	ProductCode string
	ProductName string
	UnitPrice   decimal.Decimal
	StatusCode  enums.ProductStatus
	Inventory   *InventoryInput
}

// InventoryInput captures the starting stock for a new product.
type InventoryInput struct {
	Quantity int
	Location *string
}

// ProductInventoryRow is one row of the product/inventory outer join. Quantity
// and Location are nil for products without an inventory record.
type ProductInventoryRow struct {
	ProductID   int64           `gorm:"column:product_id" json:"product_id"`
	ProductCode string          `gorm:"column:product_code" json:"product_code"`
	ProductName string          `gorm:"column:product_name" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price" json:"unit_price"`
	Quantity    *int            `gorm:"column:quantity" json:"quantity"`
	Location    *string         `gorm:"column:location" json:"location"`
}
