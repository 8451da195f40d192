package controllers

import (
	"net/http"

	"github.com/refriproject/refri-backend/api/responses"
	"github.com/refriproject/refri-backend/api/validators"
	"github.com/refriproject/refri-backend/internal/suggest"
	pkgerrors "github.com/refriproject/refri-backend/pkg/errors"
	"github.com/refriproject/refri-backend/pkg/logger"
)

// SuggestionsCreate asks the model for recipes built from the usable inventory.
func SuggestionsCreate(svc suggest.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "suggestion service unavailable"))
			return
		}

		var req suggest.Request
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		suggestion, err := svc.Suggest(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestion)
	}
}
