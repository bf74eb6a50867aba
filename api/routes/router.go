package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/kioskeats-backend/api/controllers"
	"github.com/angelmondragon/kioskeats-backend/api/middleware"
	"github.com/angelmondragon/kioskeats-backend/internal/admin"
	"github.com/angelmondragon/kioskeats-backend/internal/catalog"
	"github.com/angelmondragon/kioskeats-backend/internal/kiosk"
	"github.com/angelmondragon/kioskeats-backend/internal/menuimport"
	"github.com/angelmondragon/kioskeats-backend/internal/menus"
	"github.com/angelmondragon/kioskeats-backend/pkg/config"
	"github.com/angelmondragon/kioskeats-backend/pkg/db"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/metrics"
	"github.com/angelmondragon/kioskeats-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Catalog       *catalog.Store
	KioskManager  *kiosk.Manager
	MenuService   *menus.Service
	ImportService *menuimport.Service
	AdminService  *admin.Service
	Metrics       *metrics.KioskMetrics
	Registry      *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	// Customer-facing surface; no auth, the kiosk is a trusted device.
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogFetch(deps.Catalog, logg))
			r.Get("/categories/{categoryId}/products", controllers.CategoryProducts(deps.Catalog, logg))
			r.Get("/products/{productId}", controllers.ProductDetail(deps.Catalog, logg))
		})

		r.Post("/quote", controllers.Quote(deps.Catalog, deps.Metrics, logg))

		r.Route("/sessions/{kioskId}", func(r chi.Router) {
			r.Get("/", controllers.SessionFetch(deps.KioskManager, logg))
			r.Post("/start", controllers.SessionStart(deps.KioskManager, logg))
			r.Post("/cart/items", controllers.SessionAddItem(deps.KioskManager, logg))
			r.Patch("/cart/items/{index}", controllers.SessionUpdateQuantity(deps.KioskManager, logg))
			r.Delete("/cart", controllers.SessionClearCart(deps.KioskManager, logg))
			r.Put("/tip", controllers.SessionSetTip(deps.KioskManager, logg))
			r.Post("/checkout", controllers.SessionCheckout(deps.KioskManager, logg))
			r.Post("/back", controllers.SessionBack(deps.KioskManager, logg))
			r.Post("/cancel", controllers.SessionCancel(deps.KioskManager, logg))
			r.Post("/pay", controllers.SessionPay(deps.KioskManager, logg))
		})
	})

	r.Route("/admin/v1", func(r chi.Router) {
		loginPolicy := middleware.NewPinRateLimitPolicy(
			cfg.PinRateLimit.LoginWindow,
			cfg.PinRateLimit.LoginIPLimit,
		)
		r.With(middleware.PinRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AdminLogin(deps.AdminService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Route("/menus", func(r chi.Router) {
				r.Get("/", controllers.MenuList(deps.MenuService, logg))
				r.Post("/", controllers.MenuCreate(deps.MenuService, logg))
				r.Get("/{menuId}", controllers.MenuDetail(deps.MenuService, logg))
				r.Put("/{menuId}", controllers.MenuUpdate(deps.MenuService, logg))
				r.Delete("/{menuId}", controllers.MenuDelete(deps.MenuService, logg))
				r.Post("/{menuId}/duplicate", controllers.MenuDuplicate(deps.MenuService, logg))
				r.Post("/{menuId}/publish", controllers.MenuPublish(deps.MenuService, logg))
				r.Put("/{menuId}/categories/order", controllers.MenuReorderCategories(deps.MenuService, logg))
			})

			r.Route("/import", func(r chi.Router) {
				r.Post("/gloriafood", controllers.ImportGloriaFood(deps.ImportService, logg))
				r.Post("/demo", controllers.ImportDemo(deps.ImportService, logg))
				r.Post("/preview", controllers.ImportPreview(deps.ImportService, logg))
			})
		})
	})

	return r
}
