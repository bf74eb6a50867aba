package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/kioskeats-backend/internal/admin"
	"github.com/angelmondragon/kioskeats-backend/internal/catalog"
	"github.com/angelmondragon/kioskeats-backend/internal/kiosk"
	"github.com/angelmondragon/kioskeats-backend/internal/menuimport"
	"github.com/angelmondragon/kioskeats-backend/internal/menus"
	pkgauth "github.com/angelmondragon/kioskeats-backend/pkg/auth"
	"github.com/angelmondragon/kioskeats-backend/pkg/config"
	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/metrics"
	keredis "github.com/angelmondragon/kioskeats-backend/pkg/redis"
	"github.com/angelmondragon/kioskeats-backend/pkg/security"
)

const testPin = "2468"

type memSessionStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{values: map[string]string{}}
}

func (s *memSessionStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", keredis.ErrNotFound
	}
	return value, nil
}

func (s *memSessionStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = coerce(value)
	return nil
}

func (s *memSessionStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = coerce(value)
	return true, nil
}

func (s *memSessionStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *memSessionStore) SessionKey(kioskID string) string {
	return "test:session:" + kioskID
}

func (s *memSessionStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func coerce(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

type memMenuRepo struct {
	mu      sync.Mutex
	entries map[string]models.MenuConfig
}

func newMemMenuRepo() *memMenuRepo {
	return &memMenuRepo{entries: map[string]models.MenuConfig{}}
}

func (r *memMenuRepo) List(context.Context) ([]models.MenuConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	configs := make([]models.MenuConfig, 0, len(r.entries))
	for _, cfg := range r.entries {
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (r *memMenuRepo) Get(_ context.Context, id string) (*models.MenuConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.entries[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	return &cfg, nil
}

func (r *memMenuRepo) Create(_ context.Context, cfg *models.MenuConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[cfg.ID] = *cfg
	return nil
}

func (r *memMenuRepo) Update(_ context.Context, cfg *models.MenuConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[cfg.ID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	r.entries[cfg.ID] = *cfg
	return nil
}

func (r *memMenuRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu not found")
	}
	delete(r.entries, id)
	return nil
}

type stubFetcher struct{}

func (stubFetcher) FetchMenu(context.Context, string) ([]byte, error) {
	return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream not available in tests")
}

func testMenuConfig() *models.MenuConfig {
	return &models.MenuConfig{
		ID:             "menu-1",
		Name:           "Lunch Menu",
		CurrencySymbol: "$",
		Categories: []models.Category{
			{ID: "cat_1", Name: "Mains"},
		},
		Products: []models.Product{
			{
				ID:         "prod_1",
				Name:       "Burger",
				Price:      decimal.RequireFromString("9.50"),
				CategoryID: "cat_1",
			},
		},
		LastUpdated: time.Now().UTC(),
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	pinCfg := config.PinConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
	hash, err := security.HashPin(testPin, pinCfg)
	if err != nil {
		t.Fatalf("hash pin: %v", err)
	}
	pinCfg.Hash = hash

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "kioskeats",
			ExpirationMinutes: 30,
		},
		Pin:     pinCfg,
		Session: config.SessionConfig{TTL: time.Hour},
	}

	catalogStore := catalog.NewStore()
	catalogStore.Publish(testMenuConfig())

	registry := prometheus.NewRegistry()
	kioskMetrics := metrics.NewKioskMetrics(registry)

	kioskManager, err := kiosk.NewManager(newMemSessionStore(), catalogStore, cfg.Session, false, logg, kioskMetrics)
	if err != nil {
		t.Fatalf("new kiosk manager: %v", err)
	}

	menuRepo := newMemMenuRepo()
	if err := menuRepo.Create(context.Background(), testMenuConfig()); err != nil {
		t.Fatalf("seed menu repo: %v", err)
	}
	menuService, err := menus.NewService(menuRepo, catalogStore, logg)
	if err != nil {
		t.Fatalf("new menu service: %v", err)
	}
	importService, err := menuimport.NewService(menuRepo, stubFetcher{}, logg, kioskMetrics)
	if err != nil {
		t.Fatalf("new import service: %v", err)
	}
	adminService, err := admin.NewService(cfg.Pin, cfg.JWT, logg)
	if err != nil {
		t.Fatalf("new admin service: %v", err)
	}

	return NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		Catalog:       catalogStore,
		KioskManager:  kioskManager,
		MenuService:   menuService,
		ImportService: importService,
		AdminService:  adminService,
		Metrics:       kioskMetrics,
		Registry:      registry,
	})
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "kioskeats",
		ExpirationMinutes: 30,
	}, time.Now())
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		t.Fatalf("decode data: %v (body %s)", err, rec.Body.String())
	}
}

func TestRouter_HealthLive(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health/live", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env := rec.Header().Get("X-KioskEats-Env"); env != "test" {
		t.Fatalf("env header = %q, want test", env)
	}
}

func TestRouter_MetricsExposed(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_CatalogFetch(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/catalog", nil, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var data struct {
		MenuName   string `json:"menuName"`
		TipOptions []int  `json:"tipOptions"`
	}
	decodeData(t, rec, &data)
	if data.MenuName != "Lunch Menu" {
		t.Fatalf("menu name = %q", data.MenuName)
	}
	if len(data.TipOptions) == 0 {
		t.Fatal("expected tip options")
	}
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/admin/v1/menus", nil, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRouter_AdminMenusWithToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/admin/v1/menus", nil, map[string]string{
		"Authorization": "Bearer " + adminToken(t),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var summaries []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	decodeData(t, rec, &summaries)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 menu, got %d", len(summaries))
	}
	if !summaries[0].Active {
		t.Fatal("published menu should be marked active")
	}
}

func TestRouter_AdminLogin(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/admin/v1/login", map[string]string{"pin": testPin}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var result struct {
		AccessToken string `json:"accessToken"`
	}
	decodeData(t, rec, &result)
	if result.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	rec = doJSON(t, router, http.MethodGet, "/admin/v1/menus", nil, map[string]string{
		"Authorization": "Bearer " + result.AccessToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("minted token rejected: %d", rec.Code)
	}
}

func TestRouter_AdminLoginWrongPin(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/admin/v1/login", map[string]string{"pin": "9999"}, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong pin, got %d", rec.Code)
	}
}

func TestRouter_ImportDemoCreatesMenu(t *testing.T) {
	router := newTestRouter(t)
	headers := map[string]string{"Authorization": "Bearer " + adminToken(t)}

	rec := doJSON(t, router, http.MethodPost, "/admin/v1/import/demo", nil, headers)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var cfg struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, rec, &cfg)
	if cfg.Name != "Demo Menu" {
		t.Fatalf("menu name = %q", cfg.Name)
	}
}

func TestRouter_KioskOrderFlow(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/v1/sessions/kiosk-1"

	rec := doJSON(t, router, http.MethodPost, base+"/start", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, base+"/cart/items", map[string]any{
		"productId": "prod_1",
		"quantity":  2,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var session struct {
		State  string `json:"state"`
		Totals struct {
			Subtotal decimal.Decimal `json:"subtotal"`
		} `json:"totals"`
	}
	decodeData(t, rec, &session)
	if session.State != "ORDERING" {
		t.Fatalf("state = %q, want ORDERING", session.State)
	}
	if !session.Totals.Subtotal.Equal(decimal.RequireFromString("19")) {
		t.Fatalf("subtotal = %s, want 19", session.Totals.Subtotal)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/checkout", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPut, base+"/tip", map[string]int{"tipPercent": 10}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tip: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, base+"/pay", nil, map[string]string{
		"Idempotency-Key": "tap-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	var receipt struct {
		OrderID string `json:"orderId"`
		Totals  struct {
			Total decimal.Decimal `json:"total"`
		} `json:"totals"`
	}
	decodeData(t, rec, &receipt)
	if receipt.OrderID == "" {
		t.Fatal("expected an order id")
	}
	if !receipt.Totals.Total.Equal(decimal.RequireFromString("20.9")) {
		t.Fatalf("total = %s, want 20.9", receipt.Totals.Total)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/pay", nil, map[string]string{
		"Idempotency-Key": "tap-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("pay replay: expected 200, got %d", rec.Code)
	}
	var replay struct {
		OrderID  string `json:"orderId"`
		Replayed bool   `json:"replayed"`
	}
	decodeData(t, rec, &replay)
	if !replay.Replayed || replay.OrderID != receipt.OrderID {
		t.Fatalf("replay mismatch: replayed=%v orderId=%s want %s", replay.Replayed, replay.OrderID, receipt.OrderID)
	}

	rec = doJSON(t, router, http.MethodGet, base, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch: expected 200, got %d", rec.Code)
	}
	decodeData(t, rec, &session)
	if session.State != "ATTRACT" {
		t.Fatalf("state after pay = %q, want ATTRACT", session.State)
	}
}

func TestRouter_PayRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(t)
	base := "/api/v1/sessions/kiosk-2"

	if rec := doJSON(t, router, http.MethodPost, base+"/start", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", rec.Code)
	}
	rec := doJSON(t, router, http.MethodPost, base+"/pay", nil, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without key, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Idempotency-Key") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
