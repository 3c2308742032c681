package models

import (
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
)

// QualityInspection rows live in monthly range partitions keyed by
// InspectionDate, so the date is part of the primary key.
type QualityInspection struct {
	InspectionID   int64                  `gorm:"column:inspection_id;primaryKey;autoIncrement" json:"inspection_id"`
	InspectionDate time.Time              `gorm:"column:inspection_date;type:date;primaryKey" json:"inspection_date"`
	OrderID        *int64                 `gorm:"column:order_id" json:"order_id,omitempty"`
	ProductID      int64                  `gorm:"column:product_id;not null" json:"product_id"`
	Inspector      string                 `gorm:"column:inspector;not null" json:"inspector"`
	Result         enums.InspectionResult `gorm:"column:result;not null" json:"result"`
	DefectCount    int                    `gorm:"column:defect_count;not null;default:0" json:"defect_count"`
	Remarks        *string                `gorm:"column:remarks" json:"remarks,omitempty"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (QualityInspection) TableName() string { return "quality_inspections" }
