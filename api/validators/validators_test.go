package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/efarmaplus/storefront/pkg/errors"
)

type addItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,min=1,max=99"`
}

func TestDecodeJSONBody(t *testing.T) {
	var ok addItem
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":3,"quantity":2}`))
	require.NoError(t, DecodeJSONBody(r, &ok))
	assert.Equal(t, addItem{ProductID: 3, Quantity: 2}, ok)

	var bad addItem
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":120}`))
	err := DecodeJSONBody(r, &bad)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details := typed.Details().(map[string]string)
	assert.Equal(t, "is required", details["productId"])
	assert.Equal(t, "must be at most 99", details["quantity"])

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":1,"extra":true}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(r, &addItem{}), pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`productId=1`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(r, &addItem{}), pkgerrors.CodeUnsupported))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(r, &addItem{}), pkgerrors.CodeValidation))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":1}{"productId":2}`))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(r, &addItem{}), pkgerrors.CodeValidation))

	huge := `{"productId":1,"quantity":1` + strings.Repeat(" ", maxBodyBytes) + `}`
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(huge))
	assert.True(t, pkgerrors.IsCode(DecodeJSONBody(r, &addItem{}), pkgerrors.CodeTooLarge))
}

func TestParseFormInt(t *testing.T) {
	form := url.Values{"quantity": {"3"}, "bad": {"x"}, "big": {"500"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	v, err := ParseFormInt(r, "quantity", 1, 1, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ParseFormInt(r, "missing", 1, 1, 99)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = ParseFormInt(r, "bad", 1, 1, 99)
	assert.Error(t, err)
	_, err = ParseFormInt(r, "big", 1, 1, 99)
	assert.Error(t, err)

	id, err := ParseFormID(r, "big")
	require.NoError(t, err)
	assert.Equal(t, int64(500), id)
	_, err = ParseFormID(r, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseID(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := ParseID(withParam("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseID(withParam(bad), "id")
		assert.Error(t, err, bad)
	}
}

func TestSafeReturn(t *testing.T) {
	assert.Equal(t, "/cart", SafeReturn("/cart", "/"))
	assert.Equal(t, "/products?category=Vitaminas", SafeReturn("/products?category=Vitaminas", "/"))
	assert.Equal(t, "/", SafeReturn("https://evil.example", "/"))
	assert.Equal(t, "/", SafeReturn("//evil.example", "/"))
	assert.Equal(t, "/", SafeReturn("/\\evil.example", "/"))
	assert.Equal(t, "/", SafeReturn("", "/"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "ibupro", SanitizeString("  ibuprofeno ", 6))
	assert.Equal(t, "ñandú", SanitizeString("ñandú", 10))
}
