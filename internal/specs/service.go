package specs

import (
	"context"
	"fmt"
	"strings"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

// DefaultVersion is assigned when a spec is saved without an explicit version.
const DefaultVersion = "1.0"

// Service validates and stores XML specifications.
type Service interface {
	Save(ctx context.Context, input SaveInput) (*models.ProductSpec, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.ProductSpec, error)
}

// SaveInput describes a spec upload.
type SaveInput struct {
	ProductID int64
	XML       string
	Version   string
}

type productReader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productReader
}

// NewService constructs the specs service.
func NewService(repo *Repository, products productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("specs repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Save(ctx context.Context, input SaveInput) (*models.ProductSpec, error) {
	if strings.TrimSpace(input.XML) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "xml content required")
	}
	if err := checkWellFormed(input.XML); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "xml content is not well-formed")
	}
	version := strings.TrimSpace(input.Version)
	if version == "" {
		version = DefaultVersion
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product", input.ProductID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	spec, err := s.repo.Create(ctx, &models.ProductSpec{
		ProductID: input.ProductID,
		SpecXML:   input.XML,
		Version:   version,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save spec")
	}
	return spec, nil
}

func (s *service) ListByProduct(ctx context.Context, productID int64) ([]models.ProductSpec, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list specs")
	}
	return rows, nil
}
