package dbfeatures

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongkoo81/oracle-postgresql-migration/internal/documents"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/history"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/inventory"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/products"
	"github.com/dongkoo81/oracle-postgresql-migration/internal/specs"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/db/models"
	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func serve(h http.HandlerFunc, method, target string, params map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

type stubTotals struct{ total decimal.Decimal }

func (s stubTotals) RecalculateTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	if orderID == 404 {
		return decimal.Zero, pkgerrors.NotFound("order", orderID)
	}
	return s.total, nil
}

func TestCalculateTotal(t *testing.T) {
	h := CalculateTotal(stubTotals{total: decimal.RequireFromString("125.50")}, testLogger())

	rec := serve(h, http.MethodPost, "/procedure/calculate-total/7", map[string]string{"orderId": "7"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.EqualValues(t, 7, body["orderId"])
	assert.Equal(t, "125.5", body["totalAmount"])
	_, enveloped := body["data"]
	assert.False(t, enveloped)

	rec = serve(h, http.MethodPost, "/procedure/calculate-total/404", map[string]string{"orderId": "404"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(h, http.MethodPost, "/procedure/calculate-total/abc", map[string]string{"orderId": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubAvailability struct {
	result  inventory.Availability
	gotQty  int
	gotProd int64
}

func (s *stubAvailability) CheckAvailable(ctx context.Context, productID int64, quantity int) (inventory.Availability, error) {
	s.gotProd, s.gotQty = productID, quantity
	return s.result, nil
}

func TestCheckAvailable(t *testing.T) {
	cases := []struct {
		name   string
		result inventory.Availability
		want   bool
	}{
		{"enough stock", inventory.AvailabilityAvailable, true},
		{"short", inventory.AvailabilityUnavailable, false},
		{"no inventory record", inventory.AvailabilityUnknown, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAvailability{result: tc.result}
			rec := serve(CheckAvailable(stub, testLogger()), http.MethodGet, "/function/check-available?productId=3&requiredQty=20", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, decodeObject(t, rec)["available"])
			assert.EqualValues(t, 3, stub.gotProd)
			assert.Equal(t, 20, stub.gotQty)
		})
	}

	rec := serve(CheckAvailable(&stubAvailability{}, testLogger()), http.MethodGet, "/function/check-available?productId=3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	zero := &stubAvailability{result: inventory.AvailabilityAvailable}
	rec = serve(CheckAvailable(zero, testLogger()), http.MethodGet, "/function/check-available?productId=3&requiredQty=0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, zero.gotQty)
}

type stubProducts struct {
	filters products.SearchFilters
	limit   int
	status  string
	seqErr  error
}

func (s *stubProducts) Search(ctx context.Context, filters products.SearchFilters) ([]models.Product, error) {
	s.filters = filters
	return nil, nil
}

func (s *stubProducts) CreatedToday(ctx context.Context) ([]models.Product, error) {
	return []models.Product{{ProductID: 1, ProductCode: "P-1"}}, nil
}

func (s *stubProducts) TopByPrice(ctx context.Context, limit int) ([]models.Product, error) {
	s.limit = limit
	return nil, nil
}

func (s *stubProducts) WithoutInventory(ctx context.Context) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProducts) WithInventory(ctx context.Context) ([]products.ProductInventoryRow, error) {
	return []products.ProductInventoryRow{{ProductID: 2}}, nil
}

func (s *stubProducts) Status(ctx context.Context, id int64) (*string, error) {
	if s.status == "" {
		return nil, nil
	}
	return &s.status, nil
}

func (s *stubProducts) SequenceNextVal(ctx context.Context, name string) (int64, error) {
	if s.seqErr != nil {
		return 0, s.seqErr
	}
	return 42, nil
}

func TestSearchProductsPassesFilters(t *testing.T) {
	stub := &stubProducts{}
	rec := serve(SearchProducts(stub, testLogger()), http.MethodGet, "/querydsl/search?name=bolt&minPrice=10.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	assert.Equal(t, "bolt", stub.filters.Name)
	require.NotNil(t, stub.filters.MinPrice)
	assert.True(t, stub.filters.MinPrice.Equal(decimal.RequireFromString("10.5")))
	assert.Nil(t, stub.filters.MaxPrice)

	rec = serve(SearchProducts(stub, testLogger()), http.MethodGet, "/querydsl/search?maxPrice=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopProductsLimit(t *testing.T) {
	stub := &stubProducts{}
	rec := serve(TopProducts(stub, testLogger()), http.MethodGet, "/rownum/top-products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, products.DefaultTopLimit, stub.limit)

	serve(TopProducts(stub, testLogger()), http.MethodGet, "/rownum/top-products?limit=3", nil)
	assert.Equal(t, 3, stub.limit)

	rec = serve(TopProducts(stub, testLogger()), http.MethodGet, "/rownum/top-products?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductStatusAndSequence(t *testing.T) {
	stub := &stubProducts{status: "ACTIVE"}
	rec := serve(ProductStatus(stub, testLogger()), http.MethodGet, "/decode/product-status/9", map[string]string{"productId": "9"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.EqualValues(t, 9, body["productId"])
	assert.Equal(t, "ACTIVE", body["status"])

	unknown := &stubProducts{}
	rec = serve(ProductStatus(unknown, testLogger()), http.MethodGet, "/decode/product-status/404", map[string]string{"productId": "404"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeObject(t, rec)
	assert.Contains(t, body, "status")
	assert.Nil(t, body["status"])

	rec = serve(SequenceNextVal(stub, testLogger()), http.MethodGet, "/sequence/nextval?sequenceName=seq_product", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeObject(t, rec)
	assert.Equal(t, "seq_product", body["sequenceName"])
	assert.EqualValues(t, 42, body["nextVal"])

	stub.seqErr = pkgerrors.New(pkgerrors.CodeValidation, "unknown sequence")
	rec = serve(SequenceNextVal(stub, testLogger()), http.MethodGet, "/sequence/nextval?sequenceName=pg_class", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinListings(t *testing.T) {
	stub := &stubProducts{}
	rec := serve(ProductsWithInventory(stub, testLogger()), http.MethodGet, "/outer-join/products-inventory", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0]["quantity"])

	rec = serve(ProductsWithoutInventory(stub, testLogger()), http.MethodGet, "/minus/products-without-inventory", nil)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = serve(TodayProducts(stub, testLogger()), http.MethodGet, "/sysdate/today-products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "P-1")
}

type stubDocuments struct{ saved documents.SaveInput }

func (s *stubDocuments) Save(ctx context.Context, input documents.SaveInput) (*models.ProductDocument, error) {
	s.saved = input
	return &models.ProductDocument{DocID: 11, ProductID: input.ProductID, DocTitle: input.Title, Content: input.Content}, nil
}

func (s *stubDocuments) ListByProduct(ctx context.Context, productID int64) ([]models.ProductDocument, error) {
	return nil, nil
}

func TestSaveDocument(t *testing.T) {
	stub := &stubDocuments{}
	rec := serve(SaveDocument(stub, testLogger()), http.MethodPost, "/clob/save?productId=1&content=%EC%A0%9C%ED%92%88", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.EqualValues(t, 11, body["docId"])
	assert.EqualValues(t, 2, body["contentLength"])
	assert.Equal(t, defaultDocumentTitle, stub.saved.Title)
	assert.Nil(t, stub.saved.FileType)
}

type stubSpecs struct {
	saved specs.SaveInput
	err   error
}

func (s *stubSpecs) Save(ctx context.Context, input specs.SaveInput) (*models.ProductSpec, error) {
	s.saved = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.ProductSpec{SpecID: 5}, nil
}

func (s *stubSpecs) ListByProduct(ctx context.Context, productID int64) ([]models.ProductSpec, error) {
	return []models.ProductSpec{{SpecID: 5, ProductID: productID}}, nil
}

func TestSaveSpec(t *testing.T) {
	stub := &stubSpecs{}
	rec := serve(SaveSpec(stub, testLogger()), http.MethodPost, "/xml/save?productId=1&xmlContent=%3Cspec%2F%3E", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, decodeObject(t, rec)["specId"])
	assert.Equal(t, "<spec/>", stub.saved.XML)
	assert.Equal(t, specs.DefaultVersion, stub.saved.Version)

	stub.err = pkgerrors.New(pkgerrors.CodeValidation, "xml is not well-formed")
	rec = serve(SaveSpec(stub, testLogger()), http.MethodPost, "/xml/save?productId=1&xmlContent=%3Cspec", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(ProductSpecs(stub, testLogger()), http.MethodGet, "/specs/product/1", map[string]string{"productId": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"spec_id":5`)
}

type stubMerger struct {
	qty int
	err error
}

func (s *stubMerger) Merge(ctx context.Context, productID int64, quantity int) error {
	s.qty = quantity
	return s.err
}

func TestMergeInventory(t *testing.T) {
	stub := &stubMerger{}
	rec := serve(MergeInventory(stub, testLogger()), http.MethodPost, "/merge/inventory?productId=4&quantity=15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeObject(t, rec)
	assert.EqualValues(t, 4, body["productId"])
	assert.EqualValues(t, 15, body["quantityAdded"])
	assert.Equal(t, "Inventory merged successfully", body["message"])
	assert.Equal(t, 15, stub.qty)

	rec = serve(MergeInventory(stub, testLogger()), http.MethodPost, "/merge/inventory?productId=4&quantity=-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -1, stub.qty, "negative adjustments reach the merge unchanged")

	rec = serve(MergeInventory(stub, testLogger()), http.MethodPost, "/merge/inventory?productId=4&quantity=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stub.err = pkgerrors.NotFound("product", 99)
	rec = serve(MergeInventory(stub, testLogger()), http.MethodPost, "/merge/inventory?productId=99&quantity=1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type stubInspections struct{ got string }

func (s *stubInspections) ListByResult(ctx context.Context, result string) ([]models.QualityInspection, error) {
	s.got = result
	if result == "MAYBE" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inspection result")
	}
	return nil, nil
}

func TestInspectionsByResult(t *testing.T) {
	stub := &stubInspections{}
	rec := serve(InspectionsByResult(stub, testLogger()), http.MethodGet, "/partition/PASS", map[string]string{"result": "PASS"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PASS", stub.got)

	rec = serve(InspectionsByResult(stub, testLogger()), http.MethodGet, "/partition/MAYBE", map[string]string{"result": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubHistory struct {
	refreshErr   error
	concurrently bool
}

func (s *stubHistory) FindHierarchy(ctx context.Context, orderID int64) ([]history.Node, error) {
	return []history.Node{{Level: 1}}, nil
}

func (s *stubHistory) ListDailySummaries(ctx context.Context) ([]models.DailySummary, error) {
	return nil, nil
}

func (s *stubHistory) RefreshDailySummary(ctx context.Context, concurrently bool) error {
	s.concurrently = concurrently
	return s.refreshErr
}

func TestMaterializedViewEndpoints(t *testing.T) {
	stub := &stubHistory{concurrently: true}
	rec := serve(RefreshDailySummary(stub, testLogger()), http.MethodPost, "/materialized-view/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Materialized View refreshed successfully", decodeObject(t, rec)["message"])
	assert.False(t, stub.concurrently)

	stub.refreshErr = pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("lock timeout"), "refresh daily summary")
	rec = serve(RefreshDailySummary(stub, testLogger()), http.MethodPost, "/materialized-view/refresh", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(DailySummary(stub, testLogger()), http.MethodGet, "/materialized-view", nil)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	rec = serve(OrderHierarchy(stub, testLogger()), http.MethodGet, "/hierarchy/3", map[string]string{"orderId": "3"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"level":1`)
}
