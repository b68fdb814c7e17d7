package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/dmitrijs2005/quickflip/internal/fakebackend"
	"github.com/dmitrijs2005/quickflip/internal/logging"
)

func newFakeClient(t *testing.T) (*HTTPClient, *fakebackend.Server) {
	t.Helper()
	fb := fakebackend.New()
	srv := httptest.NewServer(fb.Handler())
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/api", 5*time.Second, logging.Nop()), fb
}

func TestHTTPClient_CreateOrGetUser_IsIdempotent(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx := context.Background()

	u1, err := c.CreateOrGetUser(ctx, "ana@example.com", "Ana")
	require.NoError(t, err)
	u2, err := c.CreateOrGetUser(ctx, "ana@example.com", "")
	require.NoError(t, err)

	assert.NotEmpty(t, u1.ID)
	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, "Ana", u2.FullName)
}

func TestHTTPClient_DescribeImage_CoercesStringPrice(t *testing.T) {
	c, fb := newFakeClient(t)
	price := 45.50
	total := 20
	fb.Describe = func(_, _ string) fakebackend.Description {
		return fakebackend.Description{
			Title:          "Vintage Lamp",
			Condition:      "Good",
			Genre:          "Home",
			EstimatedPrice: &price,
			PriceCount:     7,
			TotalAvailable: &total,
		}
	}

	e, err := c.DescribeImage(context.Background(), "data:image/jpeg;base64,AAAA", "usr-1")
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Vintage Lamp", e.Title)
	assert.Equal(t, "Home", e.Category)
	require.NotNil(t, e.EstimatedPrice)
	assert.InDelta(t, 45.5, *e.EstimatedPrice, 1e-9)
	assert.Equal(t, 7, e.PriceSampleCount)
	require.NotNil(t, e.TotalAvailableCount)
	assert.Equal(t, 20, *e.TotalAvailableCount)
	assert.NotEmpty(t, e.ImageURL)
}

func TestHTTPClient_ListAndUpdate(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx := context.Background()

	e, err := c.DescribeImage(ctx, "img", "usr 1")
	require.NoError(t, err)

	items, err := c.ListProducts(ctx, "usr 1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ConfirmedID(e.ID), items[0].ID)
	assert.Equal(t, models.StatusScanned, items[0].Status)
	assert.Equal(t, "usr 1", items[0].OwnerID)
	assert.Nil(t, items[0].PricePaid)

	got, err := c.UpdateStatus(ctx, e.ID, models.StatusPurchased, 30)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPurchased, got.Status)
	require.NotNil(t, got.PricePaid)
	assert.Equal(t, 30.0, *got.PricePaid)
	assert.NotNil(t, got.PurchasedAt)

	title := "Brass Lamp"
	got, err = c.UpdateProduct(ctx, e.ID, models.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Brass Lamp", got.Title)
	assert.Equal(t, models.StatusPurchased, got.Status)

	require.NoError(t, c.DeleteProduct(ctx, e.ID))
	items, err = c.ListProducts(ctx, "usr 1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHTTPClient_UpdateStatus_RejectsScanned(t *testing.T) {
	c, _ := newFakeClient(t)

	_, err := c.UpdateStatus(context.Background(), "srv-1", models.StatusScanned, 1)
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestHTTPClient_StatusRequestBody(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/products/srv-9", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"product":{"id":"srv-9","status":"SOLD","pricePaid":"30.00","priceSold":60}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/api/", time.Second, logging.Nop())
	got, err := c.UpdateStatus(context.Background(), "srv-9", models.StatusSold, 60)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"status": "SOLD", "priceSold": 60.0}, body)
	require.NotNil(t, got.PricePaid)
	require.NotNil(t, got.PriceSold)
	assert.Equal(t, 30.0, *got.PricePaid)
	assert.Equal(t, 60.0, *got.PriceSold)
}

func TestHTTPClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    string
	}{
		{name: "json error body", status: http.StatusNotFound, message: "Product not found", want: "Product not found"},
		{name: "empty body", status: http.StatusInternalServerError, want: "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fb := newFakeClient(t)
			fb.FailNext(fakebackend.RouteDelete, tt.status, tt.message)

			err := c.DeleteProduct(context.Background(), "srv-1")

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestHTTPClient_NotFound(t *testing.T) {
	c, _ := newFakeClient(t)

	err := c.DeleteProduct(context.Background(), "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second, logging.Nop())
	_, err := c.ListProducts(context.Background(), "usr-1")

	assert.ErrorIs(t, err, common.ErrUnavailable)
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListProducts(ctx, "usr-1")

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, common.ErrUnavailable)
}

func TestHTTPClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, logging.Nop())
	_, err := c.ListProducts(context.Background(), "usr-1")

	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestProductDTO_UnknownStatusReadsAsScanned(t *testing.T) {
	item := productDTO{ID: "srv-1", Status: "ARCHIVED", EstimatedPrice: "abc"}.toItem()

	assert.Equal(t, models.StatusScanned, item.Status)
	assert.Nil(t, item.EstimatedPrice)
	assert.False(t, item.IsPlaceholder())
}
