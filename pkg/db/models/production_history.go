package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionHistory records process steps for an order. Steps form a tree via
// ParentHistoryID.
type ProductionHistory struct {
	HistoryID       int64     `gorm:"column:history_id;primaryKey;autoIncrement" json:"history_id"`
	OrderID         int64     `gorm:"column:order_id;not null;index" json:"order_id"`
	ParentHistoryID *int64    `gorm:"column:parent_history_id" json:"parent_history_id,omitempty"`
	ProcessStep     string    `gorm:"column:process_step;not null" json:"process_step"`
	Quantity        int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	WorkDate        time.Time `gorm:"column:work_date;type:date;not null" json:"work_date"`
	Notes           *string   `gorm:"column:notes" json:"notes,omitempty"`
}

func (ProductionHistory) TableName() string { return "production_history" }

// DailySummary is a row of the mv_daily_production_summary materialized view.
type DailySummary struct {
	SummaryDate   time.Time       `gorm:"column:summary_date;type:date;primaryKey" json:"summary_date"`
	OrderCount    int64           `gorm:"column:order_count" json:"order_count"`
	TotalQuantity int64           `gorm:"column:total_quantity" json:"total_quantity"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
}

func (DailySummary) TableName() string { return "mv_daily_production_summary" }
