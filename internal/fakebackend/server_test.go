package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestServer_DescribeListAndUpdate(t *testing.T) {
	s := New()
	s.Now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	h := s.Handler()

	rec, body := do(t, h, http.MethodPost, "/api/describe", `{"base64":"x","userId":"u1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id := body["id"].(string)
	assert.Equal(t, "19.99", body["estimatedPrice"])

	rec, body = do(t, h, http.MethodGet, "/api/products?userId=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := body["products"].([]any)
	require.Len(t, products, 1)
	assert.Nil(t, products[0].(map[string]any)["pricePaid"])

	rec, body = do(t, h, http.MethodPut, "/api/products/"+id, `{"status":"PURCHASED","pricePaid":12.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := body["product"].(map[string]any)
	assert.Equal(t, "PURCHASED", p["status"])
	assert.Equal(t, "12.50", p["pricePaid"])
	assert.Equal(t, "2025-01-02T03:04:05Z", p["purchasedAt"])

	rec, _ = do(t, h, http.MethodPut, "/api/products/"+id, `{"status":"ARCHIVED"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/api/products/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.ProductCount())
}

func TestServer_Validation(t *testing.T) {
	h := New().Handler()

	rec, body := do(t, h, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "userId is required", body["error"])

	rec, _ = do(t, h, http.MethodPost, "/api/users", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(t, h, http.MethodDelete, "/api/products/none", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", body["error"])
}

func TestServer_FailNext(t *testing.T) {
	s := New()
	h := s.Handler()
	s.FailNext(RouteUsers, http.StatusTeapot, "")

	rec, body := do(t, h, http.MethodPost, "/api/users", `{"email":"a@b.c"}`)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Nil(t, body)

	rec, body = do(t, h, http.MethodPost, "/api/users", `{"email":"a@b.c"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.c", body["user"].(map[string]any)["email"])
}
