package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/angelmondragon/kioskeats-backend/api/responses"
	"github.com/angelmondragon/kioskeats-backend/api/validators"
	"github.com/angelmondragon/kioskeats-backend/internal/menuimport"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
)

type gloriaFoodImportRequest struct {
	APIKey string `json:"apiKey" validate:"required,min=8"`
}

// ImportGloriaFood pulls the live menu for an API key and saves it as a
// new library entry.
func ImportGloriaFood(svc *menuimport.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gloriaFoodImportRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.ImportGloriaFood(r.Context(), req.APIKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cfg)
	}
}

// ImportDemo loads the bundled demo menu into the library.
func ImportDemo(svc *menuimport.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := svc.ImportDemo(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cfg)
	}
}

type importPreviewRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
}

type importPreviewResponse struct {
	Detector   string `json:"detector"`
	Categories any    `json:"categories"`
	Products   any    `json:"products"`
	Warnings   string `json:"warnings,omitempty"`
}

// ImportPreview normalizes a pasted document without saving it.
func ImportPreview(svc *menuimport.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req importPreviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Preview(r.Context(), req.Document)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := importPreviewResponse{
			Detector:   result.Detector,
			Categories: result.Categories,
			Products:   result.Products,
		}
		if result.Warnings != nil {
			resp.Warnings = result.Warnings.Error()
		}
		responses.WriteSuccess(w, resp)
	}
}
