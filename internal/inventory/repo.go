package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/pkg/db/models"
	"github.com/refriproject/refri-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository encapsulates food item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every item, nearest expiration first with undated items
// last.
func (r *Repository) ListAll(ctx context.Context) ([]models.FoodItem, error) {
	var rows []models.FoodItem
	err := r.db.WithContext(ctx).
		Order("expiration_date IS NULL").
		Order("expiration_date ASC").
		Order("added_date ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a single item or gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	var row models.FoodItem
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Insert persists a new item.
func (r *Repository) Insert(ctx context.Context, row *models.FoodItem) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// UpdateFields applies a partial column update and reports how many rows
// matched.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, gorm.ErrEmptySlice
	}
	result := r.db.WithContext(ctx).
		Model(&models.FoodItem{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// UpdateStatus rewrites only the status column.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.FoodStatus) (int64, error) {
	return r.UpdateFields(ctx, id, map[string]any{"status": status})
}

// Delete removes the row and reports how many rows matched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.FoodItem{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

// ListNonTerminal pages through rows whose status is still derived from the
// expiration date. Used by the expiry sweep.
func (r *Repository) ListNonTerminal(ctx context.Context, offset, limit int) ([]models.FoodItem, error) {
	var rows []models.FoodItem
	err := r.db.WithContext(ctx).
		Where("status <> ?", enums.FoodStatusConsumed).
		Order("added_date ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
