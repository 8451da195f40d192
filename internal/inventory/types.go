package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/pkg/db/models"
	"github.com/refriproject/refri-backend/pkg/enums"
)

// Item is the API-facing shape of a tracked food item. Dates are rendered
// date-only; expiry comparisons never look at the time of day.
type Item struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Category       enums.FoodCategory `json:"category"`
	Location       enums.FoodLocation `json:"location"`
	Quantity       int                `json:"quantity"`
	ExpirationDate *string            `json:"expirationDate"`
	Status         enums.FoodStatus   `json:"status"`
	AddedDate      time.Time          `json:"addedDate"`
	CreatedBy      *string            `json:"createdBy,omitempty"`
}

// Stats summarizes the current snapshot for the dashboard.
type Stats struct {
	Total            int `json:"total"`
	FridgeFreshCount int `json:"fridgeFreshCount"`
	PantryFreshCount int `json:"pantryFreshCount"`
	ExpiredCount     int `json:"expiredCount"`
}

// CreateInput carries the validated fields for a new item.
type CreateInput struct {
	Name           string
	Category       enums.FoodCategory
	Location       enums.FoodLocation
	Quantity       int
	ExpirationDate *time.Time
	CreatedBy      *string
}

// UpdateInput carries a partial edit. Nil pointer fields are left untouched.
// ExpirationDateSet distinguishes "clear the date" from "date not supplied";
// when the date changes without an explicit Status, the item is reclassified
// from the new date. An explicit Status always wins.
type UpdateInput struct {
	Name              *string
	Category          *enums.FoodCategory
	Location          *enums.FoodLocation
	Quantity          *int
	ExpirationDate    *time.Time
	ExpirationDateSet bool
	Status            *enums.FoodStatus
}

// Empty reports whether the update carries no fields at all.
func (u UpdateInput) Empty() bool {
	return u.Name == nil && u.Category == nil && u.Location == nil &&
		u.Quantity == nil && !u.ExpirationDateSet && u.Status == nil
}

// itemFromModel maps a persisted row to the API shape, reclassifying
// non-terminal statuses from the stored expiration date so status drifts
// forward as time passes without requiring a write. Consumed rows pass
// through unchanged.
func itemFromModel(row models.FoodItem, today time.Time, horizonDays int) Item {
	status := row.Status
	if !status.IsTerminal() {
		status = Classify(row.ExpirationDate, today, horizonDays)
	}
	return Item{
		ID:             row.ID,
		Name:           row.Name,
		Category:       row.Category,
		Location:       row.Location,
		Quantity:       row.Quantity,
		ExpirationDate: formatDate(row.ExpirationDate),
		Status:         status,
		AddedDate:      row.AddedDate,
		CreatedBy:      row.CreatedBy,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := DayUTC(*t).Format(time.DateOnly)
	return &formatted
}
