package menuimport

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/metrics"
)

const (
	sourceGloriaFood = "gloriafood"
	sourceDemo       = "demo"
)

// MenuStore persists imported menus into the library.
type MenuStore interface {
	Create(ctx context.Context, cfg *models.MenuConfig) error
}

// MenuFetcher pulls a raw menu document from the upstream provider.
type MenuFetcher interface {
	FetchMenu(ctx context.Context, apiKey string) ([]byte, error)
}

// Service turns external menu documents into saved library entries.
type Service struct {
	store   MenuStore
	fetcher MenuFetcher
	logg    *logger.Logger
	metrics *metrics.KioskMetrics
}

func NewService(store MenuStore, fetcher MenuFetcher, logg *logger.Logger, m *metrics.KioskMetrics) (*Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "menu store is required")
	}
	if fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "menu fetcher is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Service{store: store, fetcher: fetcher, logg: logg, metrics: m}, nil
}

// ImportGloriaFood fetches the live menu for the given API key,
// normalizes it, and saves it as a new library entry.
func (s *Service) ImportGloriaFood(ctx context.Context, apiKey string) (*models.MenuConfig, error) {
	if apiKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "API key is required")
	}

	raw, err := s.fetcher.FetchMenu(ctx, apiKey)
	if err != nil {
		s.metrics.IncMenuImport(sourceGloriaFood, false)
		return nil, err
	}

	name := "GloriaFood Import - " + time.Now().UTC().Format("2006-01-02")
	cfg, err := s.saveNormalized(ctx, raw, name, sourceGloriaFood)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ImportDemo loads the bundled demo document through the same pipeline
// as a live import.
func (s *Service) ImportDemo(ctx context.Context) (*models.MenuConfig, error) {
	return s.saveNormalized(ctx, DemoDocument(), "Demo Menu", sourceDemo)
}

// Preview normalizes a pasted document without persisting anything, so
// the back office can inspect what an import would produce.
func (s *Service) Preview(ctx context.Context, raw []byte) (Result, error) {
	result := NormalizeBytes(raw)
	s.logNormalization(ctx, result)
	if len(result.Categories) == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "no menu categories recognized in document")
	}
	return result, nil
}

func (s *Service) saveNormalized(ctx context.Context, raw []byte, name, source string) (*models.MenuConfig, error) {
	result := NormalizeBytes(raw)
	s.logNormalization(ctx, result)

	if len(result.Categories) == 0 {
		s.metrics.IncMenuImport(source, false)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "connected, but no menu categories were found")
	}

	now := time.Now().UTC()
	cfg := &models.MenuConfig{
		ID:             uuid.NewString(),
		Name:           name,
		CurrencySymbol: "$",
		Categories:     result.Categories,
		Products:       result.Products,
		LastUpdated:    now,
	}
	if err := s.store.Create(ctx, cfg); err != nil {
		s.metrics.IncMenuImport(source, false)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving imported menu")
	}

	s.metrics.IncMenuImport(source, true)
	ctx = s.logg.WithMenuID(ctx, cfg.ID)
	s.logg.Info(ctx, "menu imported")
	return cfg, nil
}

func (s *Service) logNormalization(ctx context.Context, result Result) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"shape":      result.Detector,
		"categories": len(result.Categories),
		"products":   len(result.Products),
	})
	if result.Warnings != nil {
		s.logg.Warn(s.logg.WithField(ctx, "warnings", result.Warnings.Error()), "menu normalized with degradations")
		return
	}
	s.logg.Info(ctx, "menu normalized")
}
