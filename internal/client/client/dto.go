package client

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/quickflip/internal/client/models"
	"github.com/dmitrijs2005/quickflip/internal/client/pricing"
)

// Price fields are typed any on the wire: the backend sends either numbers
// or decimal strings, and every one goes through pricing.CoercePrice.

type createUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

type userEnvelope struct {
	User *models.User `json:"user"`
}

type productDTO struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Condition      string     `json:"condition"`
	Genre          string     `json:"genre"`
	EstimatedPrice any        `json:"estimatedPrice"`
	PriceCount     int        `json:"priceCount"`
	TotalAvailable *int       `json:"totalAvailable,omitempty"`
	ImageURL       string     `json:"imageUrl"`
	Status         string     `json:"status"`
	PricePaid      any        `json:"pricePaid"`
	PriceSold      any        `json:"priceSold"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	PurchasedAt    *time.Time `json:"purchasedAt"`
	SoldAt         *time.Time `json:"soldAt"`
}

// toItem maps a wire product onto the domain type. An unknown status is
// read as Scanned so a malformed record never looks purchased or sold.
func (p productDTO) toItem() models.Item {
	status, err := models.ParseStatus(p.Status)
	if err != nil {
		status = models.StatusScanned
	}
	return models.Item{
		ID:                  models.ConfirmedID(p.ID),
		OwnerID:             p.UserID,
		ImageRef:            p.ImageURL,
		Title:               p.Title,
		Description:         p.Description,
		Condition:           p.Condition,
		Category:            p.Genre,
		EstimatedPrice:      pricing.CoercePrice(p.EstimatedPrice),
		PriceSampleCount:    p.PriceCount,
		TotalAvailableCount: p.TotalAvailable,
		Status:              status,
		PricePaid:           pricing.CoercePrice(p.PricePaid),
		PriceSold:           pricing.CoercePrice(p.PriceSold),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
		PurchasedAt:         p.PurchasedAt,
		SoldAt:              p.SoldAt,
	}
}

type productsEnvelope struct {
	Products []productDTO `json:"products"`
}

type productEnvelope struct {
	Product *productDTO `json:"product"`
}

type describeRequest struct {
	Base64 string `json:"base64"`
	UserID string `json:"userId"`
}

type describeResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Condition      string `json:"condition"`
	Genre          string `json:"genre"`
	EstimatedPrice any    `json:"estimatedPrice"`
	PriceCount     int    `json:"priceCount"`
	TotalAvailable *int   `json:"totalAvailable,omitempty"`
	ImageURL       string `json:"imageUrl"`
}

func (d describeResponse) toEnrichment() *models.Enrichment {
	return &models.Enrichment{
		ID:                  d.ID,
		Title:               d.Title,
		Description:         d.Description,
		Condition:           d.Condition,
		Category:            d.Genre,
		EstimatedPrice:      pricing.CoercePrice(d.EstimatedPrice),
		PriceSampleCount:    d.PriceCount,
		TotalAvailableCount: d.TotalAvailable,
		ImageURL:            d.ImageURL,
	}
}

type statusRequest struct {
	Status    models.Status `json:"status"`
	PricePaid *float64      `json:"pricePaid,omitempty"`
	PriceSold *float64      `json:"priceSold,omitempty"`
}

type patchRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Condition      *string  `json:"condition,omitempty"`
	EstimatedPrice *float64 `json:"estimatedPrice,omitempty"`
	PricePaid      *float64 `json:"pricePaid,omitempty"`
	PriceSold      *float64 `json:"priceSold,omitempty"`
}

func newPatchRequest(p models.Patch) patchRequest {
	return patchRequest{
		Title:          p.Title,
		Description:    p.Description,
		Condition:      p.Condition,
		EstimatedPrice: p.EstimatedPrice,
		PricePaid:      p.PricePaid,
		PriceSold:      p.PriceSold,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func errorMessage(body []byte) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error
}
