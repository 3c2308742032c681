package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
	"gorm.io/gorm"
)

const (
	parentTable      = "quality_inspections"
	defaultPartition = "quality_inspections_default"
	partitionLayout  = "2006_01"
	boundLayout      = "2006-01-02"
)

// Repository persists quality inspections and manages their monthly partitions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the inspection. Postgres routes the row to the partition
// covering InspectionDate, or to the default partition.
func (r *Repository) Create(ctx context.Context, inspection *models.QualityInspection) (*models.QualityInspection, error) {
	if err := r.db.WithContext(ctx).Create(inspection).Error; err != nil {
		return nil, err
	}
	return inspection, nil
}

// ListByResult returns inspections with the given result, newest first.
func (r *Repository) ListByResult(ctx context.Context, result enums.InspectionResult) ([]models.QualityInspection, error) {
	var rows []models.QualityInspection
	err := r.db.WithContext(ctx).
		Where("result = ?", result).
		Order("inspection_date DESC").
		Order("inspection_id DESC").
		Find(&rows).
		Error
	return rows, err
}

// EnsureMonthlyPartition creates the partition holding month if it is missing.
// Rows for that month already routed to the default partition are moved into
// the new table before it is attached; Postgres refuses the attach otherwise.
func (r *Repository) EnsureMonthlyPartition(ctx context.Context, month time.Time) (string, error) {
	from := monthStart(month)
	to := from.AddDate(0, 1, 0)
	name := PartitionName(from)
	lower, upper := from.Format(boundLayout), to.Format(boundLayout)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attached, err := isAttached(tx, name)
		if err != nil || attached {
			return err
		}
		// Blocks inserts into the default partition until the attach commits.
		stmts := []string{
			fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", defaultPartition),
			fmt.Sprintf("CREATE TABLE %s (LIKE %s INCLUDING DEFAULTS INCLUDING CONSTRAINTS)", name, parentTable),
			fmt.Sprintf(
				"WITH moved AS (DELETE FROM %s WHERE inspection_date >= '%s' AND inspection_date < '%s' RETURNING *) INSERT INTO %s SELECT * FROM moved",
				defaultPartition, lower, upper, name,
			),
			fmt.Sprintf("ALTER TABLE %s ATTACH PARTITION %s FOR VALUES FROM ('%s') TO ('%s')", parentTable, name, lower, upper),
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return name, err
}

func isAttached(tx *gorm.DB, name string) (bool, error) {
	var count int64
	err := tx.Raw(`
SELECT count(*)
  FROM pg_inherits i
  JOIN pg_class c ON c.oid = i.inhrelid
  JOIN pg_class p ON p.oid = i.inhparent
 WHERE p.relname = ? AND c.relname = ?`, parentTable, name).Scan(&count).Error
	return count > 0, err
}

// ListPartitions returns the names of the tables attached to quality_inspections.
func (r *Repository) ListPartitions(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Raw(`
SELECT c.relname
  FROM pg_inherits i
  JOIN pg_class c ON c.oid = i.inhrelid
  JOIN pg_class p ON p.oid = i.inhparent
 WHERE p.relname = ?
 ORDER BY c.relname`, parentTable).Scan(&names).Error
	return names, err
}

// PartitionName returns the partition table name for the month containing t.
func PartitionName(t time.Time) string {
	return parentTable + "_" + monthStart(t).Format(partitionLayout)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
