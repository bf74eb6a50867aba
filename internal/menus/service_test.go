package menus

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/kioskeats-backend/internal/catalog"
	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
)

type stubRepo struct {
	byID map[string]*models.MenuConfig
}

func newStubRepo(configs ...*models.MenuConfig) *stubRepo {
	repo := &stubRepo{byID: map[string]*models.MenuConfig{}}
	for _, cfg := range configs {
		repo.byID[cfg.ID] = cfg
	}
	return repo
}

func (r *stubRepo) List(context.Context) ([]models.MenuConfig, error) {
	var out []models.MenuConfig
	for _, cfg := range r.byID {
		out = append(out, *cfg)
	}
	return out, nil
}

func (r *stubRepo) Get(_ context.Context, id string) (*models.MenuConfig, error) {
	cfg, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	clone := *cfg
	return &clone, nil
}

func (r *stubRepo) Create(_ context.Context, cfg *models.MenuConfig) error {
	r.byID[cfg.ID] = cfg
	return nil
}

func (r *stubRepo) Update(_ context.Context, cfg *models.MenuConfig) error {
	if _, ok := r.byID[cfg.ID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	r.byID[cfg.ID] = cfg
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	delete(r.byID, id)
	return nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, store, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func libraryEntry(id string) *models.MenuConfig {
	return &models.MenuConfig{
		ID:             id,
		Name:           "Lunch",
		CurrencySymbol: "$",
		Categories: []models.Category{
			{ID: "cat_1", Name: "Mains"},
			{ID: "cat_2", Name: "Drinks"},
			{ID: "cat_3", Name: "Desserts"},
		},
		Products:    []models.Product{{ID: "prod_1", Name: "Burger", CategoryID: "cat_1"}},
		LastUpdated: time.Now().UTC().Add(-time.Hour),
	}
}

func TestCreateDefaultsCurrency(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, newStubRepo())

	cfg, err := svc.Create(context.Background(), CreateInput{Name: "Dinner"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if cfg.CurrencySymbol != "$" {
		t.Fatalf("currency = %q, want $", cfg.CurrencySymbol)
	}
	if cfg.ID == "" || cfg.LastUpdated.IsZero() {
		t.Fatalf("entry missing id or timestamp: %+v", cfg)
	}
	if cfg.Categories == nil || cfg.Products == nil {
		t.Fatal("new entry should carry empty, non-nil catalog slices")
	}
}

func TestGetAppliesCurrencyDefault(t *testing.T) {
	t.Parallel()

	entry := libraryEntry("m1")
	entry.CurrencySymbol = ""
	svc, _ := newTestService(t, newStubRepo(entry))

	cfg, err := svc.Get(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg.CurrencySymbol != "$" {
		t.Fatalf("currency = %q, want $", cfg.CurrencySymbol)
	}
}

func TestUpdateBumpsLastUpdatedAndRefreshesLiveSnapshot(t *testing.T) {
	t.Parallel()

	entry := libraryEntry("m1")
	before := entry.LastUpdated
	svc, store := newTestService(t, newStubRepo(entry))

	if _, err := svc.Publish(context.Background(), "m1"); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	name := "Lunch v2"
	cfg, err := svc.Update(context.Background(), "m1", UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !cfg.LastUpdated.After(before) {
		t.Fatalf("LastUpdated not bumped: %s", cfg.LastUpdated)
	}
	if store.Current().MenuName != "Lunch v2" {
		t.Fatalf("live snapshot name = %q, want Lunch v2", store.Current().MenuName)
	}
}

func TestUpdateNilSlicesLeaveCatalogUntouched(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, newStubRepo(libraryEntry("m1")))

	name := "Renamed"
	cfg, err := svc.Update(context.Background(), "m1", UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(cfg.Categories) != 3 || len(cfg.Products) != 1 {
		t.Fatalf("catalog changed: %d categories, %d products", len(cfg.Categories), len(cfg.Products))
	}
}

func TestDeleteActiveMenuIsRefused(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, newStubRepo(libraryEntry("m1")))
	if _, err := svc.Publish(context.Background(), "m1"); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	err := svc.Delete(context.Background(), "m1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("err = %v, want state conflict", err)
	}
}

func TestDuplicateAppendsCopySuffix(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(libraryEntry("m1"))
	svc, _ := newTestService(t, repo)

	copied, err := svc.Duplicate(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if copied.Name != "Lunch (Copy)" {
		t.Fatalf("name = %q, want Lunch (Copy)", copied.Name)
	}
	if copied.ID == "m1" {
		t.Fatal("duplicate must get a fresh id")
	}
	if len(repo.byID) != 2 {
		t.Fatalf("library size = %d, want 2", len(repo.byID))
	}
}

func TestPublishActivatesSnapshot(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, newStubRepo(libraryEntry("m1")))

	if _, err := svc.Publish(context.Background(), "m1"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if store.ActiveMenuID() != "m1" {
		t.Fatalf("active menu = %q, want m1", store.ActiveMenuID())
	}

	summaries, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 || !summaries[0].Active {
		t.Fatalf("summaries = %+v, want the published entry flagged active", summaries)
	}
}

func TestReorderCategories(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, newStubRepo(libraryEntry("m1")))

	cfg, err := svc.ReorderCategories(context.Background(), "m1", []string{"cat_3", "cat_1", "cat_2"})
	if err != nil {
		t.Fatalf("ReorderCategories: %v", err)
	}
	got := []string{cfg.Categories[0].ID, cfg.Categories[1].ID, cfg.Categories[2].ID}
	want := []string{"cat_3", "cat_1", "cat_2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestReorderCategoriesRejectsBadOrderings(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, newStubRepo(libraryEntry("m1")))

	cases := map[string][]string{
		"missing entry": {"cat_1", "cat_2"},
		"unknown id":    {"cat_1", "cat_2", "cat_9"},
		"duplicate id":  {"cat_1", "cat_1", "cat_2"},
	}
	for name, ordering := range cases {
		_, err := svc.ReorderCategories(context.Background(), "m1", ordering)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: err = %v, want validation error", name, err)
		}
	}
}
