package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/common"
	"github.com/dmitrijs2005/quickflip/internal/logging"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// HTTPClient talks to the backend's JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "https://host/api").
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("component", "http_client"),
	}
}

func (c *HTTPClient) CreateOrGetUser(ctx context.Context, email, fullName string) (*models.User, error) {
	var resp userEnvelope
	if err := c.do(ctx, http.MethodPost, "/users", createUserRequest{Email: email, FullName: fullName}, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrUnexpectedResponse)
	}
	return resp.User, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context, userID string) ([]models.Item, error) {
	var resp productsEnvelope
	path := "/products?userId=" + url.QueryEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(resp.Products))
	for _, p := range resp.Products {
		items = append(items, p.toItem())
	}
	return items, nil
}

func (c *HTTPClient) DescribeImage(ctx context.Context, base64Image, userID string) (*models.Enrichment, error) {
	var resp describeResponse
	if err := c.do(ctx, http.MethodPost, "/describe", describeRequest{Base64: base64Image, UserID: userID}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: enrichment without id", ErrUnexpectedResponse)
	}
	return resp.toEnrichment(), nil
}

// UpdateStatus requests a transition to Purchased or Sold. The price is
// sent as pricePaid or priceSold respectively.
func (c *HTTPClient) UpdateStatus(ctx context.Context, productID string, status models.Status, price float64) (*models.Item, error) {
	req := statusRequest{Status: status}
	switch status {
	case models.StatusPurchased:
		req.PricePaid = &price
	case models.StatusSold:
		req.PriceSold = &price
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidTransition, status)
	}
	return c.putProduct(ctx, productID, req)
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, productID string, patch models.Patch) (*models.Item, error) {
	return c.putProduct(ctx, productID, newPatchRequest(patch))
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(productID), nil, nil)
}

func (c *HTTPClient) putProduct(ctx context.Context, productID string, body any) (*models.Item, error) {
	var resp productEnvelope
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(productID), body, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, fmt.Errorf("%w: missing product", ErrUnexpectedResponse)
	}
	item := resp.Product.toItem()
	return &item, nil
}

// do sends body as JSON and decodes a 2xx response into out (when out is
// non-nil). Transport failures wrap common.ErrUnavailable; non-2xx
// responses become *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, b)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrUnexpectedResponse, method, path, err)
	}
	return nil
}
