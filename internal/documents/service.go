package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

// Service stores and lists free-form product documents.
type Service interface {
	Save(ctx context.Context, input SaveInput) (*models.ProductDocument, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.ProductDocument, error)
}

// SaveInput describes a new document. Content may be arbitrarily large.
type SaveInput struct {
	ProductID int64
	Title     string
	Content   string
	FileType  *string
}

type productReader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productReader
}

// NewService constructs the documents service.
func NewService(repo *Repository, products productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Save(ctx context.Context, input SaveInput) (*models.ProductDocument, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document title required")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("product", input.ProductID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	doc, err := s.repo.Create(ctx, &models.ProductDocument{
		ProductID: input.ProductID,
		DocTitle:  input.Title,
		Content:   input.Content,
		FileType:  input.FileType,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save document")
	}
	return doc, nil
}

func (s *service) ListByProduct(ctx context.Context, productID int64) ([]models.ProductDocument, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}
	return rows, nil
}
