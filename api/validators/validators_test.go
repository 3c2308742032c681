package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/dongkoo81/oracle-postgresql-migration/pkg/errors"
)

type orderBody struct {
	OrderNo string `json:"order_no" validate:"required,max=50"`
	Items   []struct {
		ProductID int64 `json:"product_id" validate:"required,min=1"`
		Quantity  int   `json:"quantity" validate:"required,min=1"`
	} `json:"items" validate:"dive"`
}

func TestDecodeJSONBodyValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"order_no":"","items":[{"product_id":1,"quantity":0}]}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["order_no"])
	assert.Equal(t, "is required", details["items[0].quantity"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"order_no":"PO-1","surprise":true}`))
	var body orderBody
	err := DecodeJSONBody(req, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?productId=7&minPrice=10.50&limit=500&bad=x", nil)

	id, err := ParseQueryInt64(req, "productId")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = ParseQueryInt64(req, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	minPrice, err := ParseQueryDecimal(req, "minPrice")
	require.NoError(t, err)
	assert.Equal(t, "10.5", minPrice.String())

	maxPrice, err := ParseQueryDecimal(req, "maxPrice")
	require.NoError(t, err)
	assert.Nil(t, maxPrice)

	_, err = ParseQueryInt(req, "limit", 5, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = RequireQuery(req, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryQuantityAcceptsAnySign(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?neg=-3&zero=0&word=ten&huge=99999999999", nil)

	qty, err := ParseQueryQuantity(req, "neg")
	require.NoError(t, err)
	assert.Equal(t, -3, qty)

	qty, err = ParseQueryQuantity(req, "zero")
	require.NoError(t, err)
	assert.Zero(t, qty)

	for _, key := range []string{"word", "huge", "missing"} {
		_, err = ParseQueryQuantity(req, key)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), key)
	}
}

func TestPathInt64(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", "42")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	id, err := PathInt64(req, "orderId")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = PathInt64(req, "productId")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingInput(t *testing.T) {
	var body orderBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body)
	require.Error(t, err)
	assert.Equal(t, "request body is empty", pkgerrors.As(err).Message())

	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"order_no":"PO-1"}{"order_no":"PO-2"}`)), &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	payload := `{"order_no":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	var body orderBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload)), &body)
	require.Error(t, err)
	assert.Equal(t, "request body too large", pkgerrors.As(err).Message())
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "볼트 M8", SanitizeString("  볼트 M8\x00 ", 0))
	assert.Equal(t, "산업용", SanitizeString("산업용 로봇 팔", 3))
	assert.Equal(t, "ab", SanitizeString("ab c", 3))
	assert.Equal(t, "", SanitizeString(" \n ", 10))
}
