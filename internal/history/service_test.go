package history

import (
	"context"
	"testing"
	"time"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/orders"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/testdb"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStepLinksParent(t *testing.T) {
	conn := testdb.SQLite(t)
	order := testdb.MustCreateOrder(t, conn, "PO-H-1")
	svc, err := NewService(NewRepository(conn), orders.NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	workDate := time.Date(2026, time.April, 2, 18, 0, 0, 0, time.UTC)
	root, err := svc.RecordStep(ctx, order.OrderID, StepInput{ProcessStep: " cutting ", Quantity: 10, WorkDate: &workDate})
	require.NoError(t, err)
	assert.Equal(t, "cutting", root.ProcessStep)
	assert.Equal(t, time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC), root.WorkDate)

	child, err := svc.RecordStep(ctx, order.OrderID, StepInput{ParentHistoryID: &root.HistoryID, ProcessStep: "welding", Quantity: 8})
	require.NoError(t, err)
	require.NotNil(t, child.ParentHistoryID)
	assert.Equal(t, root.HistoryID, *child.ParentHistoryID)
}

func TestRecordStepRejectsForeignParent(t *testing.T) {
	conn := testdb.SQLite(t)
	first := testdb.MustCreateOrder(t, conn, "PO-H-2")
	second := testdb.MustCreateOrder(t, conn, "PO-H-3")
	svc, err := NewService(NewRepository(conn), orders.NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	root, err := svc.RecordStep(ctx, first.OrderID, StepInput{ProcessStep: "cutting"})
	require.NoError(t, err)

	_, err = svc.RecordStep(ctx, second.OrderID, StepInput{ParentHistoryID: &root.HistoryID, ProcessStep: "welding"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	missing := int64(999)
	_, err = svc.RecordStep(ctx, first.OrderID, StepInput{ParentHistoryID: &missing, ProcessStep: "welding"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.RecordStep(ctx, 12345, StepInput{ProcessStep: "cutting"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, map[string]any{"entity": "order", "id": int64(12345)}, pkgerrors.As(err).Details())

	_, err = svc.RecordStep(ctx, first.OrderID, StepInput{ProcessStep: ""})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
