package orders

import (
	"context"
	"testing"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/testdb"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryFindOrderLoadsDetailsInOrder(t *testing.T) {
	conn := testdb.SQLite(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := testdb.MustCreateProduct(t, conn, "R-1", "4.00")
	order := testdb.MustCreateOrder(t, conn, "PO-R-1")
	for _, qty := range []int{2, 1} {
		_, err := repo.CreateDetail(ctx, &models.OrderDetail{
			OrderID:    order.OrderID,
			ProductID:  product.ProductID,
			Quantity:   qty,
			UnitPrice:  product.UnitPrice,
			LineAmount: product.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		})
		require.NoError(t, err)
	}

	loaded, err := repo.FindOrder(ctx, order.OrderID)
	require.NoError(t, err)
	require.Len(t, loaded.Details, 2)
	assert.Equal(t, 2, loaded.Details[0].Quantity)
	assert.Equal(t, 1, loaded.Details[1].Quantity)

	_, err = repo.FindOrder(ctx, order.OrderID+1)
	assert.True(t, db.IsNotFound(err))
}

func TestRepositoryPostgresRoutines(t *testing.T) {
	tx := testdb.Postgres(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	product := testdb.MustCreateProduct(t, tx, "PG-ORD-1", "2.50")
	order := testdb.MustCreateOrder(t, tx, "PG-PO-1")
	_, err := repo.CreateDetail(ctx, &models.OrderDetail{
		OrderID:    order.OrderID,
		ProductID:  product.ProductID,
		Quantity:   4,
		UnitPrice:  product.UnitPrice,
		LineAmount: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	total, err := NewProcedureTotalCalculator().RecalculateTotal(ctx, tx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", total.StringFixed(2))

	loaded, err := repo.FindOrder(ctx, order.OrderID)
	require.NoError(t, err)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(10)))

	day := order.OrderDate.Format(dateLayout)
	rows, err := repo.FindByDateRange(ctx, day, day)
	require.NoError(t, err)
	var found *OrderSummaryRow
	for i := range rows {
		if rows[i].OrderID == order.OrderID {
			found = &rows[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, int64(1), found.LineCount)
}

func TestProcedureTotalCalculatorMissingOrder(t *testing.T) {
	tx := testdb.Postgres(t)
	// Run inside a savepoint so the raised exception does not poison the
	// surrounding test transaction.
	sp := tx.SavePoint("missing_order")
	require.NoError(t, sp.Error)

	_, err := NewProcedureTotalCalculator().RecalculateTotal(context.Background(), tx, -1)
	require.Error(t, err)
	assert.True(t, db.IsNoDataFound(err))
	require.NoError(t, tx.RollbackTo("missing_order").Error)
}
