package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

// Service exposes process history and daily production summaries.
type Service interface {
	RecordStep(ctx context.Context, orderID int64, input StepInput) (*models.ProductionHistory, error)
	FindHierarchy(ctx context.Context, orderID int64) ([]Node, error)
	ListDailySummaries(ctx context.Context) ([]models.DailySummary, error)
	RefreshDailySummary(ctx context.Context, concurrently bool) error
}

// StepInput describes a process step. ParentHistoryID links it under an
// earlier step of the same order.
type StepInput struct {
	ParentHistoryID *int64
	ProcessStep     string
	Quantity        int
	WorkDate        *time.Time
	Notes           *string
}

type orderReader interface {
	FindOrder(ctx context.Context, orderID int64) (*models.ProductionOrder, error)
}

type service struct {
	repo   *Repository
	orders orderReader
	now    func() time.Time
}

// NewService constructs the history service.
func NewService(repo *Repository, orders orderReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	return &service{repo: repo, orders: orders, now: time.Now}, nil
}

func (s *service) RecordStep(ctx context.Context, orderID int64, input StepInput) (*models.ProductionHistory, error) {
	step := strings.TrimSpace(input.ProcessStep)
	if step == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "process step required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be zero or greater")
	}

	if _, err := s.orders.FindOrder(ctx, orderID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("order", orderID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if input.ParentHistoryID != nil {
		parent, err := s.repo.FindStep(ctx, *input.ParentHistoryID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.NotFound("production_history", *input.ParentHistoryID)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent step")
		}
		if parent.OrderID != orderID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "parent step belongs to another order").
				WithDetails(map[string]any{"parent_history_id": parent.HistoryID, "order_id": parent.OrderID})
		}
	}

	workDate := s.now()
	if input.WorkDate != nil {
		workDate = *input.WorkDate
	}
	y, m, d := workDate.Date()

	created, err := s.repo.Create(ctx, &models.ProductionHistory{
		OrderID:         orderID,
		ParentHistoryID: input.ParentHistoryID,
		ProcessStep:     step,
		Quantity:        input.Quantity,
		WorkDate:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record step")
	}
	return created, nil
}

func (s *service) FindHierarchy(ctx context.Context, orderID int64) ([]Node, error) {
	nodes, err := s.repo.FindHierarchy(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hierarchy")
	}
	return nodes, nil
}

func (s *service) ListDailySummaries(ctx context.Context) ([]models.DailySummary, error) {
	rows, err := s.repo.ListDailySummaries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list daily summaries")
	}
	return rows, nil
}

func (s *service) RefreshDailySummary(ctx context.Context, concurrently bool) error {
	if err := s.repo.RefreshDailySummary(ctx, concurrently); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh daily summary")
	}
	return nil
}
