package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/pkg/db/models"
	"github.com/refriproject/refri-backend/pkg/enums"
	pkgerrors "github.com/refriproject/refri-backend/pkg/errors"
	"gorm.io/gorm"
)

// ServiceParams groups dependencies for the inventory service.
type ServiceParams struct {
	Repo        *Repository
	Store       *Store
	HorizonDays int
	// Now overrides the clock, mainly for tests. Defaults to time.Now.
	Now func() time.Time
}

// Service exposes business rules for the household inventory.
type Service interface {
	List(ctx context.Context) ([]Item, error)
	Stats(ctx context.Context) (Stats, error)
	ExpiringSoon(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, input CreateInput) (Item, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Item, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.FoodStatus) (Item, error)
	Restore(ctx context.Context, id uuid.UUID) (Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Refresh(ctx context.Context) error
	Snapshot() []Item
	Clear()
}

type service struct {
	repo        *Repository
	store       *Store
	horizonDays int
	now         func() time.Time
}

// NewService builds an inventory service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory repo is required")
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory store is required")
	}
	horizon := params.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		store:       params.Store,
		horizonDays: horizon,
		now:         now,
	}, nil
}

// Refresh replaces the in-memory snapshot from persistence, reclassifying
// every non-consumed row against today's date.
func (s *service) Refresh(ctx context.Context) error {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	today := s.now()
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemFromModel(row, today, s.horizonDays))
	}
	s.store.Load(items)
	return nil
}

// List resynchronizes the snapshot and returns it.
func (s *service) List(ctx context.Context) ([]Item, error) {
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.store.Items(), nil
}

// Stats resynchronizes the snapshot and returns the dashboard counts.
func (s *service) Stats(ctx context.Context) (Stats, error) {
	if err := s.Refresh(ctx); err != nil {
		return Stats{}, err
	}
	return s.store.Stats(), nil
}

// ExpiringSoon resynchronizes the snapshot and returns the expiring subset.
func (s *service) ExpiringSoon(ctx context.Context) ([]Item, error) {
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.store.ExpiringSoon(), nil
}

// Create validates the input, classifies the initial status from the
// expiration date, persists the item, and resynchronizes the snapshot.
func (s *service) Create(ctx context.Context, input CreateInput) (Item, error) {
	if err := validateCreate(input); err != nil {
		return Item{}, err
	}

	expiration := normalizeDate(input.ExpirationDate)
	row := &models.FoodItem{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		Category:       input.Category,
		Location:       input.Location,
		Quantity:       input.Quantity,
		ExpirationDate: expiration,
		Status:         Classify(expiration, s.now(), s.horizonDays),
		CreatedBy:      input.CreatedBy,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert food item")
	}
	if err := s.Refresh(ctx); err != nil {
		return Item{}, err
	}
	return itemFromModel(*row, s.now(), s.horizonDays), nil
}

// Update applies a partial edit. When the expiration date changes without an
// explicit status, the item is reclassified from the new date; an explicit
// status always wins.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Item, error) {
	if id == uuid.Nil {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.Empty() {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	fields, err := s.updateFields(input)
	if err != nil {
		return Item{}, err
	}

	if _, err := s.findItem(ctx, id); err != nil {
		return Item{}, err
	}
	rows, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update food item")
	}
	if rows == 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "food item not found")
	}
	return s.reload(ctx, id)
}

// SetStatus pins the status directly without running the classifier. Used to
// mark an item consumed or for manual correction.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.FoodStatus) (Item, error) {
	if id == uuid.Nil {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if !status.IsValid() {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized status")
	}
	rows, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
	}
	if rows == 0 {
		return Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "food item not found")
	}
	return s.reload(ctx, id)
}

// Restore reassigns a time-accurate status from the stored expiration date,
// undoing a consumed marking.
func (s *service) Restore(ctx context.Context, id uuid.UUID) (Item, error) {
	if id == uuid.Nil {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	row, err := s.findItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	status := Classify(row.ExpirationDate, s.now(), s.horizonDays)
	if _, err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return Item{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore item status")
	}
	return s.reload(ctx, id)
}

// Delete removes the item from persistence and the snapshot.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete food item")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "food item not found")
	}
	return s.Refresh(ctx)
}

// Snapshot returns the current in-memory items without touching persistence.
func (s *service) Snapshot() []Item {
	return s.store.Items()
}

// Clear drops the in-memory snapshot. Used when the session ends.
func (s *service) Clear() {
	s.store.Clear()
}

func (s *service) findItem(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "food item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load food item")
	}
	return row, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (Item, error) {
	row, err := s.findItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if err := s.Refresh(ctx); err != nil {
		return Item{}, err
	}
	return itemFromModel(*row, s.now(), s.horizonDays), nil
}

func (s *service) updateFields(input UpdateInput) (map[string]any, error) {
	fields := map[string]any{}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		fields["name"] = trimmed
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized category")
		}
		fields["category"] = *input.Category
	}
	if input.Location != nil {
		if !input.Location.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized location")
		}
		fields["location"] = *input.Location
	}
	if input.Quantity != nil {
		if *input.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		fields["quantity"] = *input.Quantity
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized status")
	}

	if input.ExpirationDateSet {
		expiration := normalizeDate(input.ExpirationDate)
		if expiration == nil {
			fields["expiration_date"] = nil
		} else {
			fields["expiration_date"] = *expiration
		}
		if input.Status == nil {
			fields["status"] = Classify(expiration, s.now(), s.horizonDays)
		}
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	return fields, nil
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if input.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unrecognized category")
	}
	if !input.Location.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unrecognized location")
	}
	return nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := DayUTC(*t)
	return &day
}
