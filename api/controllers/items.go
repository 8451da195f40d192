package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/refriproject/refri-backend/api/middleware"
	"github.com/refriproject/refri-backend/api/responses"
	"github.com/refriproject/refri-backend/api/validators"
	"github.com/refriproject/refri-backend/internal/inventory"
	"github.com/refriproject/refri-backend/pkg/enums"
	pkgerrors "github.com/refriproject/refri-backend/pkg/errors"
	"github.com/refriproject/refri-backend/pkg/logger"
)

type createItemPayload struct {
	Name           string  `json:"name" validate:"required,min=1,max=120"`
	Category       string  `json:"category" validate:"required"`
	Location       string  `json:"location" validate:"required"`
	Quantity       int     `json:"quantity" validate:"required,min=1"`
	ExpirationDate *string `json:"expirationDate" validate:"omitempty,datetime=2006-01-02"`
}

// optionalDate distinguishes "expirationDate": null (clear the date) from the
// key being absent (leave it alone).
type optionalDate struct {
	set   bool
	value *string
}

func (o *optionalDate) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.value = &s
	return nil
}

type updateItemPayload struct {
	Name           *string      `json:"name" validate:"omitempty,min=1,max=120"`
	Category       *string      `json:"category"`
	Location       *string      `json:"location"`
	Quantity       *int         `json:"quantity" validate:"omitempty,min=1"`
	ExpirationDate optionalDate `json:"expirationDate"`
	Status         *string      `json:"status"`
}

// ItemsList returns the full inventory snapshot, reclassified as of today.
func ItemsList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		items, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ItemsStats returns the dashboard counts.
func ItemsStats(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		stats, err := svc.Stats(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// ItemsExpiring returns the subset of items inside the expiry horizon.
func ItemsExpiring(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		items, err := svc.ExpiringSoon(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ItemsCreate adds a new item, attributing it to the acting user.
func ItemsCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload createItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := enums.ParseFoodCategory(payload.Category)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}
		location, err := enums.ParseFoodLocation(payload.Location)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location"))
			return
		}
		expiration, err := parseDatePtr(payload.ExpirationDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := inventory.CreateInput{
			Name:           payload.Name,
			Category:       category,
			Location:       location,
			Quantity:       payload.Quantity,
			ExpirationDate: expiration,
		}
		if username := middleware.UsernameFromContext(ctx); username != "" {
			input.CreatedBy = &username
		}

		item, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemsUpdate applies a partial edit to an item.
func ItemsUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := itemIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := inventory.UpdateInput{
			Name:     payload.Name,
			Quantity: payload.Quantity,
		}
		if payload.Category != nil {
			category, err := enums.ParseFoodCategory(*payload.Category)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Category = &category
		}
		if payload.Location != nil {
			location, err := enums.ParseFoodLocation(*payload.Location)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid location"))
				return
			}
			input.Location = &location
		}
		if payload.Status != nil {
			status, err := enums.ParseFoodStatus(*payload.Status)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if payload.ExpirationDate.set {
			expiration, err := parseDatePtr(payload.ExpirationDate.value)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.ExpirationDate = expiration
			input.ExpirationDateSet = true
		}

		item, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemsConsume marks an item consumed, a terminal user-driven state.
func ItemsConsume(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := itemIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.SetStatus(ctx, id, enums.FoodStatusConsumed)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemsRestore undoes a consumed marking, reclassifying from the stored date.
func ItemsRestore(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := itemIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.Restore(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemsDelete removes an item permanently.
func ItemsDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := itemIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func itemIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	return id, nil
}

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(*value))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "expiration date must be a YYYY-MM-DD date")
	}
	return &parsed, nil
}
