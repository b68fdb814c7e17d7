package client

import (
	"context"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
)

// Client is the boundary to the QuickFlip backend. Every method may fail
// with a network or server error; callers treat any error as terminal for
// that call.
type Client interface {
	CreateOrGetUser(ctx context.Context, email, fullName string) (*models.User, error)
	ListProducts(ctx context.Context, userID string) ([]models.Item, error)
	DescribeImage(ctx context.Context, base64Image, userID string) (*models.Enrichment, error)
	UpdateStatus(ctx context.Context, productID string, status models.Status, price float64) (*models.Item, error)
	UpdateProduct(ctx context.Context, productID string, patch models.Patch) (*models.Item, error)
	DeleteProduct(ctx context.Context, productID string) error
}
