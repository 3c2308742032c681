package quality

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

// Service records inspections and keeps the partition layout ahead of time.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.QualityInspection, error)
	ListByResult(ctx context.Context, result string) ([]models.QualityInspection, error)
	EnsurePartition(ctx context.Context, month time.Time) (string, error)
}

// RecordInput describes a new inspection. A nil InspectionDate means today.
type RecordInput struct {
	InspectionDate *time.Time
	OrderID        *int64
	ProductID      int64
	Inspector      string
	Result         string
	DefectCount    int
	Remarks        *string
}

type productReader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productReader
	now      func() time.Time
}

// NewService constructs the quality service.
func NewService(repo *Repository, products productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quality repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{repo: repo, products: products, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.QualityInspection, error) {
	result, err := enums.ParseInspectionResult(input.Result)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inspection result")
	}
	inspector := strings.TrimSpace(input.Inspector)
	if inspector == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inspector required")
	}
	if input.DefectCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "defect count must be zero or greater")
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product", input.ProductID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	inspectedOn := s.now()
	if input.InspectionDate != nil {
		inspectedOn = *input.InspectionDate
	}
	y, m, d := inspectedOn.Date()

	inspection, err := s.repo.Create(ctx, &models.QualityInspection{
		InspectionDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		OrderID:        input.OrderID,
		ProductID:      input.ProductID,
		Inspector:      inspector,
		Result:         result,
		DefectCount:    input.DefectCount,
		Remarks:        input.Remarks,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record inspection")
	}
	return inspection, nil
}

func (s *service) ListByResult(ctx context.Context, raw string) ([]models.QualityInspection, error) {
	result, err := enums.ParseInspectionResult(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inspection result").
			WithDetails(map[string]any{"allowed": []string{"PASS", "FAIL", "HOLD"}})
	}
	rows, err := s.repo.ListByResult(ctx, result)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inspections")
	}
	return rows, nil
}

func (s *service) EnsurePartition(ctx context.Context, month time.Time) (string, error) {
	name, err := s.repo.EnsureMonthlyPartition(ctx, month)
	if err != nil {
		return name, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure partition "+name)
	}
	return name, nil
}
