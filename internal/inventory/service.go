package inventory

import (
	"context"
	"fmt"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

// Service exposes inventory reads and writes to the HTTP layer.
type Service interface {
	Get(ctx context.Context, productID int64) (*models.InventoryRecord, error)
	Put(ctx context.Context, productID int64, input PutInput) (*models.InventoryRecord, error)
	Merge(ctx context.Context, productID int64, quantity int) error
	CheckAvailable(ctx context.Context, productID int64, quantity int) (Availability, error)
}

// PutInput replaces the stored quantity and location.
type PutInput struct {
	Quantity int
	Location *string
}

type service struct {
	repo *Repository
}

// NewService constructs the inventory service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, productID int64) (*models.InventoryRecord, error) {
	record, err := s.repo.FindByProductID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("inventory", productID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	return record, nil
}

func (s *service) Put(ctx context.Context, productID int64, input PutInput) (*models.InventoryRecord, error) {
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be zero or greater")
	}
	record, err := s.repo.Upsert(ctx, &models.InventoryRecord{
		ProductID: productID,
		Quantity:  input.Quantity,
		Location:  input.Location,
	})
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.NotFound("product", productID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert inventory")
	}
	return record, nil
}

func (s *service) Merge(ctx context.Context, productID int64, quantity int) error {
	if err := s.repo.Merge(ctx, productID, quantity); err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.NotFound("product", productID)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge inventory")
	}
	return nil
}

func (s *service) CheckAvailable(ctx context.Context, productID int64, quantity int) (Availability, error) {
	answer, err := s.repo.CheckAvailable(ctx, productID, quantity)
	if err != nil {
		return AvailabilityUnknown, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product availability")
	}
	return answer, nil
}
