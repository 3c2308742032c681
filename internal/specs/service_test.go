package specs

import (
	"context"
	"testing"
	"time"

	product "github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/testdb"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := testdb.SQLite(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, product.NewRepository(conn))
	require.NoError(t, err)
	testdb.MustCreateProduct(t, conn, "SPEC-1", "1.00")
	return svc, repo
}

func TestServiceSaveDefaultsVersion(t *testing.T) {
	svc, _ := newTestService(t)

	spec, err := svc.Save(context.Background(), SaveInput{ProductID: 1, XML: `<spec><tolerance>0.1</tolerance></spec>`})
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, spec.Version)
	assert.NotZero(t, spec.SpecID)
}

func TestServiceSaveRejectsMalformedXML(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Save(context.Background(), SaveInput{ProductID: 1, XML: `<spec>`})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	rows, err := repo.ListByProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceSaveUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Save(context.Background(), SaveInput{ProductID: 99, XML: `<spec/>`})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListByProductNewestFirst(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, version := range []string{"1.0", "1.1", "2.0"} {
		_, err := repo.Create(ctx, &models.ProductSpec{
			ProductID: 1,
			SpecXML:   "<spec/>",
			Version:   version,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	rows, err := svc.ListByProduct(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2.0", rows[0].Version)
	assert.Equal(t, "1.0", rows[2].Version)
}
