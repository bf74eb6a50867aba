package menus

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/kioskeats-backend/internal/catalog"
	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
)

const defaultCurrencySymbol = "$"

// Summary is the list view of a library entry.
type Summary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CurrencySymbol string    `json:"currencySymbol"`
	CategoryCount  int       `json:"categoryCount"`
	ProductCount   int       `json:"productCount"`
	LastUpdated    time.Time `json:"lastUpdated"`
	Active         bool      `json:"active"`
}

// CreateInput names a fresh, empty library entry.
type CreateInput struct {
	Name           string `json:"name" validate:"required,min=1,max=120"`
	CurrencySymbol string `json:"currencySymbol" validate:"omitempty,max=4"`
}

// UpdateInput replaces the editable fields of an entry. Nil slices
// leave the stored catalog untouched.
type UpdateInput struct {
	Name           *string           `json:"name" validate:"omitempty,min=1,max=120"`
	CurrencySymbol *string           `json:"currencySymbol" validate:"omitempty,max=4"`
	Categories     []models.Category `json:"categories"`
	Products       []models.Product  `json:"products"`
}

// Service manages the on-device menu library and controls which entry
// is live on the kiosk.
type Service struct {
	repo    Repository
	catalog *catalog.Store
	logg    *logger.Logger
}

func NewService(repo Repository, catalogStore *catalog.Store, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "menu repository is required")
	}
	if catalogStore == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog store is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Service{repo: repo, catalog: catalogStore, logg: logg}, nil
}

// List returns library summaries, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	activeID := s.catalog.ActiveMenuID()
	summaries := make([]Summary, 0, len(configs))
	for _, cfg := range configs {
		summaries = append(summaries, Summary{
			ID:             cfg.ID,
			Name:           cfg.Name,
			CurrencySymbol: currencyOrDefault(cfg.CurrencySymbol),
			CategoryCount:  len(cfg.Categories),
			ProductCount:   len(cfg.Products),
			LastUpdated:    cfg.LastUpdated,
			Active:         cfg.ID == activeID,
		})
	}
	return summaries, nil
}

// Get loads one full library entry.
func (s *Service) Get(ctx context.Context, id string) (*models.MenuConfig, error) {
	cfg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg.CurrencySymbol = currencyOrDefault(cfg.CurrencySymbol)
	return cfg, nil
}

// Create adds a new empty entry to the library.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.MenuConfig, error) {
	cfg := &models.MenuConfig{
		ID:             uuid.NewString(),
		Name:           input.Name,
		CurrencySymbol: currencyOrDefault(input.CurrencySymbol),
		Categories:     []models.Category{},
		Products:       []models.Product{},
		LastUpdated:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, cfg); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithMenuID(ctx, cfg.ID), "menu created")
	return cfg, nil
}

// Update applies the provided fields and bumps LastUpdated. The live
// snapshot is refreshed when the active entry is edited.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*models.MenuConfig, error) {
	cfg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		cfg.Name = *input.Name
	}
	if input.CurrencySymbol != nil {
		cfg.CurrencySymbol = currencyOrDefault(*input.CurrencySymbol)
	}
	if input.Categories != nil {
		cfg.Categories = input.Categories
	}
	if input.Products != nil {
		cfg.Products = input.Products
	}
	cfg.LastUpdated = time.Now().UTC()

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	if s.catalog.ActiveMenuID() == cfg.ID {
		s.catalog.Publish(cfg)
	}

	s.logg.Info(s.logg.WithMenuID(ctx, cfg.ID), "menu updated")
	return cfg, nil
}

// Delete removes an entry. The live entry cannot be deleted; publish a
// different one first.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s.catalog.ActiveMenuID() == id {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete the active menu")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithMenuID(ctx, id), "menu deleted")
	return nil
}

// Duplicate copies an entry under a "(Copy)" name.
func (s *Service) Duplicate(ctx context.Context, id string) (*models.MenuConfig, error) {
	source, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	copied := &models.MenuConfig{
		ID:             uuid.NewString(),
		Name:           source.Name + " (Copy)",
		CurrencySymbol: currencyOrDefault(source.CurrencySymbol),
		Categories:     source.Categories,
		Products:       source.Products,
		LastUpdated:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, copied); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithMenuID(ctx, copied.ID), "menu duplicated")
	return copied, nil
}

// Publish makes the entry the live kiosk menu.
func (s *Service) Publish(ctx context.Context, id string) (*models.MenuConfig, error) {
	cfg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg.CurrencySymbol = currencyOrDefault(cfg.CurrencySymbol)

	s.catalog.Publish(cfg)
	s.logg.Info(s.logg.WithMenuID(ctx, cfg.ID), "menu published")
	return cfg, nil
}

// ReorderCategories rewrites the display order. The given ids must be
// exactly the entry's current category ids.
func (s *Service) ReorderCategories(ctx context.Context, id string, orderedIDs []string) (*models.MenuConfig, error) {
	cfg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(orderedIDs) != len(cfg.Categories) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ordering must list every category exactly once")
	}
	byID := make(map[string]models.Category, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		byID[cat.ID] = cat
	}

	reordered := make([]models.Category, 0, len(orderedIDs))
	for _, catID := range orderedIDs {
		cat, ok := byID[catID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown category id in ordering").
				WithDetails(map[string]any{"categoryId": catID})
		}
		delete(byID, catID)
		reordered = append(reordered, cat)
	}

	cfg.Categories = reordered
	cfg.LastUpdated = time.Now().UTC()
	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, err
	}
	if s.catalog.ActiveMenuID() == cfg.ID {
		s.catalog.Publish(cfg)
	}

	s.logg.Info(s.logg.WithMenuID(ctx, cfg.ID), "categories reordered")
	return cfg, nil
}

func currencyOrDefault(symbol string) string {
	if symbol == "" {
		return defaultCurrencySymbol
	}
	return symbol
}
