package products

import (
	"context"
	"testing"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/testdb"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := testdb.SQLite(t)
	svc, err := NewService(NewRepository(conn), inventory.NewRepository(conn), db.Wrap(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	conn := testdb.SQLite(t)
	_, err := NewService(nil, inventory.NewRepository(conn), db.Wrap(conn))
	assert.Error(t, err)
	_, err = NewService(NewRepository(conn), nil, db.Wrap(conn))
	assert.Error(t, err)
	_, err = NewService(NewRepository(conn), inventory.NewRepository(conn), nil)
	assert.Error(t, err)
}

func TestServiceCreateWithInitialInventory(t *testing.T) {
	svc, conn := newTestService(t)
	location := "B-02"

	product, err := svc.Create(context.Background(), CreateProductInput{
		ProductCode: " GEAR-9 ",
		ProductName: "Gear",
		UnitPrice:   decimal.RequireFromString("19.90"),
		Inventory:   &InventoryInput{Quantity: 25, Location: &location},
	})
	require.NoError(t, err)
	assert.Equal(t, "GEAR-9", product.ProductCode)
	assert.Equal(t, string(enums.ProductStatusActive), product.StatusCode)
	require.NotNil(t, product.Inventory)
	assert.Equal(t, 25, product.Inventory.Quantity)

	var count int64
	require.NoError(t, conn.Model(&models.InventoryRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestServiceCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []CreateProductInput{
		{ProductCode: "", ProductName: "x"},
		{ProductCode: "A", ProductName: "x", UnitPrice: decimal.NewFromInt(-1)},
		{ProductCode: "A", ProductName: "x", StatusCode: enums.ProductStatus("Q")},
		{ProductCode: "A", ProductName: "x", Inventory: &InventoryInput{Quantity: -5}},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v", input)
	}
}

func TestServiceCreateDuplicateCodeIsConflict(t *testing.T) {
	svc, conn := newTestService(t)
	testdb.MustCreateProduct(t, conn, "DUP", "1.00")

	_, err := svc.Create(context.Background(), CreateProductInput{ProductCode: "DUP", ProductName: "again"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestServiceGetMissingIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceSearchPassesInvertedRangeThrough(t *testing.T) {
	svc, conn := newTestService(t)
	testdb.MustCreateProduct(t, conn, "RANGE-1", "5.00")
	minPrice := decimal.NewFromInt(10)
	maxPrice := decimal.NewFromInt(1)
	rows, err := svc.Search(context.Background(), SearchFilters{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceTopByPriceValidatesLimit(t *testing.T) {
	svc, _ := newTestService(t)
	for _, limit := range []int{0, -1, MaxTopLimit + 1} {
		_, err := svc.TopByPrice(context.Background(), limit)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "limit %d", limit)
	}
}

func TestServiceSequenceNextValRejectsUnknownNames(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SequenceNextVal(context.Background(), "pg_catalog.pg_class")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details["allowed"], "seq_product")
}
