package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/pkg/enums"
)

// FoodItem is a perishable item tracked in the household inventory.
// ExpirationDate carries no time-of-day semantics; it is stored as a
// date-only column and compared at UTC midnight.
type FoodItem struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string             `gorm:"column:name;not null"`
	Category       enums.FoodCategory `gorm:"column:category;not null"`
	Location       enums.FoodLocation `gorm:"column:location;not null;index:food_items_location_idx"`
	Quantity       int                `gorm:"column:quantity;not null;default:1"`
	ExpirationDate *time.Time         `gorm:"column:expiration_date;type:date"`
	Status         enums.FoodStatus   `gorm:"column:status;not null;index:food_items_status_idx"`
	AddedDate      time.Time          `gorm:"column:added_date;autoCreateTime"`
	CreatedBy      *string            `gorm:"column:created_by"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
