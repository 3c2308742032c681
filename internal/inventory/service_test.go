package inventory

import (
	"context"
	"testing"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/testdb"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(testdb.SQLite(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.Error(t, err)
}

func TestServiceGetMissingIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), 77)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServicePutValidatesQuantity(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Put(context.Background(), 1, PutInput{Quantity: -1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServicePutThenGet(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	product := testdb.MustCreateProduct(t, repo.db, "P-SVC", "1.00")

	_, err := svc.Put(ctx, product.ProductID, PutInput{Quantity: 12})
	require.NoError(t, err)

	record, err := svc.Get(ctx, product.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 12, record.Quantity)
}

func TestServiceMergeAndCheckLeaveQuantitiesToTheDatabase(t *testing.T) {
	tx := testdb.Postgres(t)
	svc, err := NewService(NewRepository(tx))
	require.NoError(t, err)
	ctx := context.Background()
	product := testdb.MustCreateProduct(t, tx, "P-MERGE-NEG", "1.00")

	require.NoError(t, svc.Merge(ctx, product.ProductID, 5))
	require.NoError(t, svc.Merge(ctx, product.ProductID, -2))
	record, err := svc.Get(ctx, product.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 3, record.Quantity)

	answer, err := svc.CheckAvailable(ctx, product.ProductID, 0)
	require.NoError(t, err)
	assert.Equal(t, AvailabilityAvailable, answer)

	answer, err = svc.CheckAvailable(ctx, product.ProductID, -4)
	require.NoError(t, err)
	assert.Equal(t, AvailabilityAvailable, answer)
}
