package models

import "time"

// InventoryRecord holds the on-hand quantity for a product. At most one row
// exists per product.
type InventoryRecord struct {
	InventoryID int64     `gorm:"column:inventory_id;primaryKey;autoIncrement" json:"inventory_id"`
	ProductID   int64     `gorm:"column:product_id;not null;uniqueIndex" json:"product_id"`
	Quantity    int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Location    *string   `gorm:"column:location" json:"location,omitempty"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (InventoryRecord) TableName() string { return "inventory" }
