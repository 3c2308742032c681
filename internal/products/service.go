package products

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"gorm.io/gorm"
)

// Service exposes product reads, creation and the database-routine lookups.
type Service interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Search(ctx context.Context, filters SearchFilters) ([]models.Product, error)
	CreatedToday(ctx context.Context) ([]models.Product, error)
	TopByPrice(ctx context.Context, limit int) ([]models.Product, error)
	WithoutInventory(ctx context.Context) ([]models.Product, error)
	WithInventory(ctx context.Context) ([]ProductInventoryRow, error)
	SequenceNextVal(ctx context.Context, name string) (int64, error)
	Status(ctx context.Context, id int64) (*string, error)
}

// Sequences that may be advanced through SequenceNextVal.
var allowedSequences = map[string]struct{}{
	"seq_product":      {},
	"seq_inventory":    {},
	"seq_order":        {},
	"seq_order_detail": {},
	"seq_document":     {},
	"seq_spec":         {},
	"seq_inspection":   {},
	"seq_history":      {},
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo      *Repository
	inventory *inventory.Repository
	tx        txRunner
}

// NewService constructs a product service instance.
func NewService(repo *Repository, inventoryRepo *inventory.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, inventory: inventoryRepo, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	input.ProductCode = strings.TrimSpace(input.ProductCode)
	input.ProductName = strings.TrimSpace(input.ProductName)
	if input.ProductCode == "" || input.ProductName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product code and name are required")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be zero or greater")
	}
	if input.StatusCode == "" {
		input.StatusCode = enums.ProductStatusActive
	}
	if !input.StatusCode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status code")
	}
	if input.Inventory != nil && input.Inventory.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory quantity must be zero or greater")
	}

	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.repo.WithTx(tx).Create(ctx, &models.Product{
			ProductCode: input.ProductCode,
			ProductName: input.ProductName,
			UnitPrice:   input.UnitPrice,
			StatusCode:  input.StatusCode.String(),
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product code already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if input.Inventory != nil {
			record, err := s.inventory.WithTx(tx).Upsert(ctx, &models.InventoryRecord{
				ProductID: product.ProductID,
				Quantity:  input.Inventory.Quantity,
				Location:  input.Inventory.Location,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory")
			}
			product.Inventory = record
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Search(ctx context.Context, filters SearchFilters) ([]models.Product, error) {
	rows, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return rows, nil
}

func (s *service) CreatedToday(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.CreatedToday(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products created today")
	}
	return rows, nil
}

func (s *service) TopByPrice(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > MaxTopLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("limit must be between 1 and %d", MaxTopLimit))
	}
	rows, err := s.repo.TopByPrice(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list top products")
	}
	return rows, nil
}

func (s *service) WithoutInventory(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.WithoutInventory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products without inventory")
	}
	return rows, nil
}

func (s *service) WithInventory(ctx context.Context) ([]ProductInventoryRow, error) {
	rows, err := s.repo.WithInventory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products with inventory")
	}
	return rows, nil
}

func (s *service) SequenceNextVal(ctx context.Context, name string) (int64, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if _, ok := allowedSequences[normalized]; !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown sequence").
			WithDetails(map[string]any{"sequence_name": name, "allowed": sequenceNames()})
	}
	value, err := s.repo.NextSequenceValue(ctx, normalized)
	if err != nil {
		if db.IsUndefinedRelation(err) {
			return 0, pkgerrors.NotFound("sequence", normalized)
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance sequence")
	}
	return value, nil
}

// Status returns nil when get_product_status yields NULL, i.e. for an unknown
// product.
func (s *service) Status(ctx context.Context, id int64) (*string, error) {
	status, err := s.repo.Status(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product status")
	}
	if !status.Valid {
		return nil, nil
	}
	return &status.String, nil
}

func sequenceNames() []string {
	names := make([]string, 0, len(allowedSequences))
	for name := range allowedSequences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
