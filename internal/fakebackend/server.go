// Package fakebackend is an in-memory implementation of the QuickFlip backend
// HTTP contract. It backs the client tests and the local development server
// in cmd/fakebackend. Prices are served as decimal strings, the way the real
// backend returns them from its database.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Route names accepted by FailNext.
const (
	RouteUsers    = "users"
	RouteList     = "list"
	RouteDescribe = "describe"
	RouteUpdate   = "update"
	RouteDelete   = "delete"
)

// Description is what the fake returns for a submitted image.
type Description struct {
	Title          string
	Description    string
	Condition      string
	Genre          string
	EstimatedPrice *float64
	PriceCount     int
	TotalAvailable *int
}

type user struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type product struct {
	ID             string
	UserID         string
	Title          string
	Description    string
	Condition      string
	Genre          string
	EstimatedPrice *float64
	PriceCount     int
	TotalAvailable *int
	ImageURL       string
	Status         string
	PricePaid      *float64
	PriceSold      *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PurchasedAt    *time.Time
	SoldAt         *time.Time
}

type failure struct {
	status  int
	message string
}

// Server holds users and products in memory. It is safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	users    map[string]*user
	products map[string]*product
	failures map[string][]failure
	seq      int

	// Describe produces the enrichment for an image. When nil a generic
	// description is returned.
	Describe func(base64, userID string) Description

	// Now is the clock used for timestamps.
	Now func() time.Time
}

func New() *Server {
	return &Server{
		users:    make(map[string]*user),
		products: make(map[string]*product),
		failures: make(map[string][]failure),
		Now:      time.Now,
	}
}

// Handler returns the API router mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", s.handleUsers)
		r.Post("/describe", s.handleDescribe)
		r.Get("/products", s.handleList)
		r.Put("/products/{id}", s.handleUpdate)
		r.Delete("/products/{id}", s.handleDelete)
	})
	return r
}

// FailNext makes the next request to route fail with status. An empty
// message produces a response without a JSON error body.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message})
}

// ProductCount returns how many products the fake currently stores.
func (s *Server) ProductCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// injected pops a queued failure for route and writes it. It must be called
// with s.mu held.
func (s *Server) injected(w http.ResponseWriter, route string) bool {
	queue := s.failures[route]
	if len(queue) == 0 {
		return false
	}
	f := queue[0]
	s.failures[route] = queue[1:]
	if f.message == "" {
		w.WriteHeader(f.status)
		return true
	}
	writeError(w, f.status, f.message)
	return true
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.injected(w, RouteUsers) {
		return
	}

	u, ok := s.users[req.Email]
	if !ok {
		now := s.Now().UTC()
		u = &user{ID: s.nextID("usr"), Email: req.Email, FullName: req.FullName, CreatedAt: now, UpdatedAt: now}
		s.users[req.Email] = u
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Base64 string `json:"base64"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Base64 == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "base64 and userId are required")
		return
	}

	describe := s.Describe
	if describe == nil {
		describe = defaultDescription
	}
	d := describe(req.Base64, req.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.injected(w, RouteDescribe) {
		return
	}

	now := s.Now().UTC()
	p := &product{
		ID:             s.nextID("srv"),
		UserID:         req.UserID,
		Title:          d.Title,
		Description:    d.Description,
		Condition:      d.Condition,
		Genre:          d.Genre,
		EstimatedPrice: d.EstimatedPrice,
		PriceCount:     d.PriceCount,
		TotalAvailable: d.TotalAvailable,
		Status:         "SCANNED",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.ImageURL = "https://images.quickflip.local/" + p.ID + ".jpg"
	s.products[p.ID] = p

	body := map[string]any{
		"id":             p.ID,
		"title":          p.Title,
		"description":    p.Description,
		"condition":      p.Condition,
		"genre":          p.Genre,
		"estimatedPrice": priceString(p.EstimatedPrice),
		"priceCount":     p.PriceCount,
		"imageUrl":       p.ImageURL,
	}
	if p.TotalAvailable != nil {
		body["totalAvailable"] = *p.TotalAvailable
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.injected(w, RouteList) {
		return
	}

	out := make([]*product, 0)
	for _, p := range s.products {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	products := make([]map[string]any, 0, len(out))
	for _, p := range out {
		products = append(products, p.wire())
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status         *string  `json:"status"`
		Title          *string  `json:"title"`
		Description    *string  `json:"description"`
		Condition      *string  `json:"condition"`
		EstimatedPrice *float64 `json:"estimatedPrice"`
		PricePaid      *float64 `json:"pricePaid"`
		PriceSold      *float64 `json:"priceSold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.injected(w, RouteUpdate) {
		return
	}

	p, ok := s.products[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	now := s.Now().UTC()
	if req.Status != nil {
		switch *req.Status {
		case "PURCHASED":
			p.Status = "PURCHASED"
			p.PricePaid = req.PricePaid
			p.PurchasedAt = &now
		case "SOLD":
			p.Status = "SOLD"
			p.PriceSold = req.PriceSold
			p.SoldAt = &now
		default:
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Condition != nil {
		p.Condition = *req.Condition
	}
	if req.EstimatedPrice != nil {
		p.EstimatedPrice = req.EstimatedPrice
	}
	if req.Status == nil && req.PricePaid != nil {
		p.PricePaid = req.PricePaid
	}
	if req.Status == nil && req.PriceSold != nil {
		p.PriceSold = req.PriceSold
	}
	p.UpdatedAt = now

	writeJSON(w, http.StatusOK, map[string]any{"product": p.wire()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.injected(w, RouteDelete) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, ok := s.products[id]; !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	delete(s.products, id)
	w.WriteHeader(http.StatusNoContent)
}

func (p *product) wire() map[string]any {
	m := map[string]any{
		"id":             p.ID,
		"userId":         p.UserID,
		"title":          p.Title,
		"description":    p.Description,
		"condition":      p.Condition,
		"genre":          p.Genre,
		"estimatedPrice": priceString(p.EstimatedPrice),
		"priceCount":     p.PriceCount,
		"imageUrl":       p.ImageURL,
		"status":         p.Status,
		"pricePaid":      priceString(p.PricePaid),
		"priceSold":      priceString(p.PriceSold),
		"createdAt":      p.CreatedAt,
		"updatedAt":      p.UpdatedAt,
		"purchasedAt":    p.PurchasedAt,
		"soldAt":         p.SoldAt,
	}
	if p.TotalAvailable != nil {
		m["totalAvailable"] = *p.TotalAvailable
	}
	return m
}

func priceString(p *float64) any {
	if p == nil {
		return nil
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func defaultDescription(_, _ string) Description {
	price := 19.99
	return Description{
		Title:          "Unidentified item",
		Description:    "Item identified from photo.",
		Condition:      "Good",
		Genre:          "Misc",
		EstimatedPrice: &price,
		PriceCount:     3,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
