package controllers

import (
	"net/http"

	"github.com/angelmondragon/kioskeats-backend/api/responses"
	"github.com/angelmondragon/kioskeats-backend/api/validators"
	"github.com/angelmondragon/kioskeats-backend/internal/admin"
	"github.com/angelmondragon/kioskeats-backend/pkg/logger"
)

// AdminLogin exchanges the back-office PIN for a session token.
func AdminLogin(svc *admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input admin.LoginInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
