package quality

import (
	"context"
	"testing"
	"time"

	product "github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/testdb"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/enums"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteService(t *testing.T) *service {
	t.Helper()
	conn := testdb.SQLite(t)
	testdb.MustCreateProduct(t, conn, "QC-1", "2.00")
	svc, err := NewService(NewRepository(conn), product.NewRepository(conn))
	require.NoError(t, err)
	return svc.(*service)
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
	return &t
}

func TestRecordNormalizesInput(t *testing.T) {
	svc := newSQLiteService(t)

	inspection, err := svc.Record(context.Background(), RecordInput{
		InspectionDate: day(2026, time.May, 4),
		ProductID:      1,
		Inspector:      "  kim  ",
		Result:         "pass",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.InspectionResultPass, inspection.Result)
	assert.Equal(t, "kim", inspection.Inspector)
	assert.Equal(t, time.Date(2026, time.May, 4, 0, 0, 0, 0, time.UTC), inspection.InspectionDate)
	assert.NotZero(t, inspection.InspectionID)
}

func TestRecordDefaultsToToday(t *testing.T) {
	svc := newSQLiteService(t)
	svc.now = func() time.Time { return time.Date(2026, time.June, 9, 23, 0, 0, 0, time.UTC) }

	inspection, err := svc.Record(context.Background(), RecordInput{ProductID: 1, Inspector: "lee", Result: "HOLD"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.June, 9, 0, 0, 0, 0, time.UTC), inspection.InspectionDate)
}

func TestRecordValidation(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	cases := []RecordInput{
		{ProductID: 1, Inspector: "lee", Result: "MAYBE"},
		{ProductID: 1, Inspector: " ", Result: "PASS"},
		{ProductID: 1, Inspector: "lee", Result: "FAIL", DefectCount: -1},
	}
	for _, input := range cases {
		_, err := svc.Record(ctx, input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v", input)
	}

	_, err := svc.Record(ctx, RecordInput{ProductID: 42, Inspector: "lee", Result: "PASS"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListByResultNewestFirst(t *testing.T) {
	svc := newSQLiteService(t)
	ctx := context.Background()

	for _, input := range []RecordInput{
		{InspectionDate: day(2026, time.January, 10), Result: "FAIL", DefectCount: 3},
		{InspectionDate: day(2026, time.March, 2), Result: "FAIL", DefectCount: 1},
		{InspectionDate: day(2026, time.February, 20), Result: "PASS"},
	} {
		input.ProductID = 1
		input.Inspector = "park"
		_, err := svc.Record(ctx, input)
		require.NoError(t, err)
	}

	rows, err := svc.ListByResult(ctx, "fail")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, time.March, rows[0].InspectionDate.Month())
	assert.Equal(t, 3, rows[1].DefectCount)

	_, err = svc.ListByResult(ctx, "unknown")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPartitionName(t *testing.T) {
	assert.Equal(t, "quality_inspections_2026_01", PartitionName(time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "quality_inspections_2025_12", PartitionName(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))
}
