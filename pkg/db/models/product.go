package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a manufactured item that production orders reference.
type Product struct {
	ProductID   int64            `gorm:"column:product_id;primaryKey;autoIncrement" json:"product_id"`
	ProductCode string           `gorm:"column:product_code;not null;uniqueIndex" json:"product_code"`
	ProductName string           `gorm:"column:product_name;not null" json:"product_name"`
	UnitPrice   decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	StatusCode  string           `gorm:"column:status_code;type:char(1);not null;default:A" json:"status_code"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Inventory   *InventoryRecord `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:CASCADE" json:"inventory,omitempty"`
}

func (Product) TableName() string { return "products" }
