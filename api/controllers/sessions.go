package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/kioskeats-backend/api/responses"
	"github.com/angelmondragon/kioskeats-backend/api/validators"
	"github.com/angelmondragon/kioskeats-backend/internal/kiosk"
	"github.com/angelmondragon/kioskeats-backend/internal/ordering"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
)

type sessionResponse struct {
	*kiosk.Session
	Totals ordering.Totals `json:"totals"`
}

func newSessionResponse(session *kiosk.Session) sessionResponse {
	return sessionResponse{
		Session: session,
		Totals:  ordering.ComputeTotals(session.Cart, session.TipPercent),
	}
}

func kioskID(r *http.Request) string {
	return chi.URLParam(r, "kioskId")
}

// SessionFetch returns the kiosk's current state with running totals.
func SessionFetch(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := mgr.Get(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// SessionStart begins a fresh order.
func SessionStart(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := mgr.Start(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// SessionAddItem adds a priced customization to the cart.
func SessionAddItem(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input kiosk.AddItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := mgr.AddItem(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"`
}

// SessionUpdateQuantity changes one cart line; quantity zero removes it.
func SessionUpdateQuantity(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "line index must be an integer"))
			return
		}

		var req updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := mgr.UpdateQuantity(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r), index, *req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// SessionClearCart empties the cart while keeping the order open.
func SessionClearCart(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := mgr.ClearCart(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

type tipRequest struct {
	TipPercent *int `json:"tipPercent" validate:"required,min=0,max=100"`
}

// SessionSetTip records the tip choice at checkout.
func SessionSetTip(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tipRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := mgr.SetTip(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r), *req.TipPercent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// SessionCheckout moves the order to the review screen.
func SessionCheckout(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := mgr.Checkout(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// SessionBack returns from checkout to browsing.
func SessionBack(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := mgr.Back(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// SessionCancel abandons the order entirely.
func SessionCancel(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := mgr.Cancel(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

// SessionPay finalizes the order. The Idempotency-Key header shields
// against double taps on the pay button.
func SessionPay(mgr *kiosk.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
		if idemKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
			return
		}

		receipt, err := mgr.Pay(logg.WithKioskID(r.Context(), kioskID(r)), kioskID(r), idemKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}
