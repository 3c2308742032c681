package history

import (
	"context"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"gorm.io/gorm"
)

const dailySummaryView = "mv_daily_production_summary"

// Node is a production history row annotated with its depth in the process
// tree and a sortable path from the root step.
type Node struct {
	models.ProductionHistory
	Level int    `gorm:"column:level" json:"level"`
	Path  string `gorm:"column:path" json:"path"`
}

const hierarchyQuery = `
WITH RECURSIVE tree AS (
    SELECT h.history_id, h.order_id, h.parent_history_id, h.process_step,
           h.quantity, h.work_date, h.notes,
           1 AS level,
           LPAD(h.history_id::text, 19, '0') AS path
      FROM production_history h
     WHERE h.order_id = ? AND h.parent_history_id IS NULL
    UNION ALL
    SELECT c.history_id, c.order_id, c.parent_history_id, c.process_step,
           c.quantity, c.work_date, c.notes,
           t.level + 1,
           t.path || '/' || LPAD(c.history_id::text, 19, '0')
      FROM production_history c
      JOIN tree t ON c.parent_history_id = t.history_id
)
SELECT * FROM tree ORDER BY path`

// Repository reads the process tree and the daily summary view.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a process step.
func (r *Repository) Create(ctx context.Context, step *models.ProductionHistory) (*models.ProductionHistory, error) {
	if err := r.db.WithContext(ctx).Create(step).Error; err != nil {
		return nil, err
	}
	return step, nil
}

// FindStep loads a single step.
func (r *Repository) FindStep(ctx context.Context, historyID int64) (*models.ProductionHistory, error) {
	var step models.ProductionHistory
	if err := r.db.WithContext(ctx).First(&step, "history_id = ?", historyID).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

// FindHierarchy walks the order's steps depth first, starting at root steps.
func (r *Repository) FindHierarchy(ctx context.Context, orderID int64) ([]Node, error) {
	var nodes []Node
	err := r.db.WithContext(ctx).Raw(hierarchyQuery, orderID).Scan(&nodes).Error
	return nodes, err
}

// ListDailySummaries returns the materialized view, latest day first.
func (r *Repository) ListDailySummaries(ctx context.Context) ([]models.DailySummary, error) {
	var rows []models.DailySummary
	err := r.db.WithContext(ctx).Order("summary_date DESC").Find(&rows).Error
	return rows, err
}

// RefreshDailySummary recomputes the materialized view. Concurrent refresh
// keeps readers unblocked and relies on the view's unique index.
func (r *Repository) RefreshDailySummary(ctx context.Context, concurrently bool) error {
	stmt := "REFRESH MATERIALIZED VIEW " + dailySummaryView
	if concurrently {
		stmt = "REFRESH MATERIALIZED VIEW CONCURRENTLY " + dailySummaryView
	}
	return r.db.WithContext(ctx).Exec(stmt).Error
}
