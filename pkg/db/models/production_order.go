package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionOrder is the header of a production order. TotalAmount is written
// by the calculate_order_total procedure, not by application code.
type ProductionOrder struct {
	OrderID     int64           `gorm:"column:order_id;primaryKey;autoIncrement" json:"order_id"`
	OrderNo     string          `gorm:"column:order_no;not null;uniqueIndex" json:"order_no"`
	OrderDate   time.Time       `gorm:"column:order_date;type:date;not null" json:"order_date"`
	Notes       *string         `gorm:"column:notes" json:"notes,omitempty"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2);not null;default:0" json:"total_amount"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Details     []OrderDetail   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

func (ProductionOrder) TableName() string { return "production_orders" }

// OrderDetail is one line item. UnitPrice is a snapshot of the product price at
// creation time and LineAmount = UnitPrice * Quantity.
type OrderDetail struct {
	DetailID   int64           `gorm:"column:detail_id;primaryKey;autoIncrement" json:"detail_id"`
	OrderID    int64           `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID  int64           `gorm:"column:product_id;not null" json:"product_id"`
	Quantity   int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	LineAmount decimal.Decimal `gorm:"column:line_amount;type:numeric(14,2);not null" json:"line_amount"`
}

func (OrderDetail) TableName() string { return "order_details" }
