package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/kioskeats-backend/api/responses"
	"github.com/angelmondragon/kioskeats-backend/api/validators"
	"github.com/angelmondragon/kioskeats-backend/internal/catalog"
	"github.com/angelmondragon/kioskeats-backend/internal/ordering"
	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
	"github.com/angelmondragon/kioskeats-backend/pkg/metrics"
)

type catalogResponse struct {
	MenuID         string            `json:"menuId"`
	MenuName       string            `json:"menuName"`
	CurrencySymbol string            `json:"currencySymbol"`
	Categories     []models.Category `json:"categories"`
	TipOptions     []int             `json:"tipOptions"`
}

// CatalogFetch returns the live menu header: categories, currency and
// the tip choices the checkout screen offers.
func CatalogFetch(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Current()
		if snap == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no menu is published"))
			return
		}

		responses.WriteSuccess(w, catalogResponse{
			MenuID:         snap.MenuID,
			MenuName:       snap.MenuName,
			CurrencySymbol: snap.CurrencySymbol,
			Categories:     snap.Categories,
			TipOptions:     ordering.TipOptions,
		})
	}
}

// CategoryProducts lists one category's products in catalog order.
func CategoryProducts(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Current()
		if snap == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no menu is published"))
			return
		}

		products := snap.ProductsByCategory(chi.URLParam(r, "categoryId"))
		if products == nil {
			products = []models.Product{}
		}
		responses.WriteSuccess(w, products)
	}
}

type productDetailResponse struct {
	models.Product
	UpsellProduct *models.Product  `json:"upsellProduct,omitempty"`
	UpsellPrice   *decimal.Decimal `json:"upsellPrice,omitempty"`
}

// ProductDetail returns one product plus its resolved upsell pairing.
func ProductDetail(store *catalog.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Current()
		if snap == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no menu is published"))
			return
		}

		product, ok := snap.ProductByID(chi.URLParam(r, "productId"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		detail := productDetailResponse{Product: product}
		if offered, price, ok := snap.ResolveUpsell(product.ID); ok {
			detail.UpsellProduct = &offered
			detail.UpsellPrice = &price
		}
		responses.WriteSuccess(w, detail)
	}
}

type quoteRequest struct {
	ProductID string             `json:"productId" validate:"required"`
	Quantity  int                `json:"quantity" validate:"required,min=1,max=99"`
	Selection ordering.Selection `json:"selection"`
}

type quoteResponse struct {
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	Labels     []string        `json:"labels"`
	Violations any             `json:"minSelectionViolations,omitempty"`
}

// Quote prices one customization without touching any cart. Minimum
// selection problems ride along as advisory data.
func Quote(store *catalog.Store, m *metrics.KioskMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap := store.Current()
		if snap == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no menu is published"))
			return
		}
		product, ok := snap.ProductByID(req.ProductID)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		unit := ordering.UnitPrice(product, req.Selection)
		resp := quoteResponse{
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: unit,
			LineTotal: unit.Mul(decimal.NewFromInt(int64(req.Quantity))),
			Labels:    req.Selection.Labels(product),
		}
		if err := ordering.ValidateMinSelections(product, req.Selection); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				resp.Violations = typed.Details()
			}
		}

		m.IncCartQuote()
		responses.WriteSuccess(w, resp)
	}
}
