package models

import "time"

// ProductDocument stores free-form document bodies in a TEXT column.
type ProductDocument struct {
	DocID     int64     `gorm:"column:doc_id;primaryKey;autoIncrement" json:"doc_id"`
	ProductID int64     `gorm:"column:product_id;not null;index" json:"product_id"`
	DocTitle  string    `gorm:"column:doc_title;not null" json:"doc_title"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	FileType  *string   `gorm:"column:file_type" json:"file_type,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ProductDocument) TableName() string { return "product_documents" }
