// Package catalog holds the menu currently live on the kiosk. Exactly
// one snapshot is active at a time; publishing replaces it atomically.
package catalog

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
)

// Snapshot is an immutable view of the active menu. Callers must not
// mutate the slices.
type Snapshot struct {
	MenuID         string
	MenuName       string
	CurrencySymbol string
	Categories     []models.Category
	Products       []models.Product
	PublishedAt    time.Time

	productsByID map[string]int
}

// Store guards the active snapshot. Reads vastly outnumber publishes,
// so a RWMutex around a pointer swap is all the machinery needed.
type Store struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

func NewStore() *Store {
	return &Store{}
}

// Publish makes the given library entry the live menu.
func (s *Store) Publish(cfg *models.MenuConfig) {
	if cfg == nil {
		return
	}

	snapshot := &Snapshot{
		MenuID:         cfg.ID,
		MenuName:       cfg.Name,
		CurrencySymbol: cfg.CurrencySymbol,
		Categories:     cfg.Categories,
		Products:       cfg.Products,
		PublishedAt:    time.Now().UTC(),
		productsByID:   make(map[string]int, len(cfg.Products)),
	}
	if snapshot.CurrencySymbol == "" {
		snapshot.CurrencySymbol = "$"
	}
	for i, product := range cfg.Products {
		snapshot.productsByID[product.ID] = i
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

// Current returns the active snapshot, or nil when nothing has been
// published yet.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ActiveMenuID returns the id of the live menu, or "".
func (s *Store) ActiveMenuID() string {
	if snap := s.Current(); snap != nil {
		return snap.MenuID
	}
	return ""
}

// ProductByID looks up a product in the snapshot.
func (snap *Snapshot) ProductByID(id string) (models.Product, bool) {
	if snap == nil {
		return models.Product{}, false
	}
	i, ok := snap.productsByID[id]
	if !ok {
		return models.Product{}, false
	}
	return snap.Products[i], true
}

// ProductsByCategory returns the products of one category in catalog
// order.
func (snap *Snapshot) ProductsByCategory(categoryID string) []models.Product {
	if snap == nil {
		return nil
	}
	var matched []models.Product
	for _, product := range snap.Products {
		if product.CategoryID == categoryID {
			matched = append(matched, product)
		}
	}
	return matched
}

// ResolveUpsell returns the suggested add-on product and its offer
// price for the given product, when both sides of the pairing exist.
func (snap *Snapshot) ResolveUpsell(productID string) (models.Product, decimal.Decimal, bool) {
	product, ok := snap.ProductByID(productID)
	if !ok || product.Upsell == nil {
		return models.Product{}, decimal.Zero, false
	}
	offered, ok := snap.ProductByID(product.Upsell.ProductID)
	if !ok {
		return models.Product{}, decimal.Zero, false
	}
	return offered, product.Upsell.OfferPrice, true
}
