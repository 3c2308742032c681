package models

import "time"

// ProductSpec keeps a versioned XML specification for a product.
type ProductSpec struct {
	SpecID    int64     `gorm:"column:spec_id;primaryKey;autoIncrement" json:"spec_id"`
	ProductID int64     `gorm:"column:product_id;not null;index" json:"product_id"`
	SpecXML   string    `gorm:"column:spec_xml;type:xml;not null" json:"spec_xml"`
	Version   string    `gorm:"column:version;not null" json:"version"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ProductSpec) TableName() string { return "product_specs" }
