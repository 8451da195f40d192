package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/refriproject/refri-backend/api/middleware"
	"github.com/refriproject/refri-backend/internal/inventory"
	"github.com/refriproject/refri-backend/pkg/enums"
	pkgerrors "github.com/refriproject/refri-backend/pkg/errors"
)

type stubInventoryService struct {
	items []inventory.Item
	stats inventory.Stats
	err   error

	createdInput inventory.CreateInput
	updatedID    uuid.UUID
	updatedInput inventory.UpdateInput
	statusID     uuid.UUID
	statusValue  enums.FoodStatus
	restoredID   uuid.UUID
	deletedID    uuid.UUID
}

func (s *stubInventoryService) List(context.Context) ([]inventory.Item, error) {
	return s.items, s.err
}

func (s *stubInventoryService) Stats(context.Context) (inventory.Stats, error) {
	return s.stats, s.err
}

func (s *stubInventoryService) ExpiringSoon(context.Context) ([]inventory.Item, error) {
	return s.items, s.err
}

func (s *stubInventoryService) Create(_ context.Context, input inventory.CreateInput) (inventory.Item, error) {
	s.createdInput = input
	if s.err != nil {
		return inventory.Item{}, s.err
	}
	item := inventory.Item{ID: uuid.New(), Name: input.Name, Quantity: input.Quantity}
	return item, nil
}

func (s *stubInventoryService) Update(_ context.Context, id uuid.UUID, input inventory.UpdateInput) (inventory.Item, error) {
	s.updatedID = id
	s.updatedInput = input
	if s.err != nil {
		return inventory.Item{}, s.err
	}
	return inventory.Item{ID: id}, nil
}

func (s *stubInventoryService) SetStatus(_ context.Context, id uuid.UUID, status enums.FoodStatus) (inventory.Item, error) {
	s.statusID = id
	s.statusValue = status
	if s.err != nil {
		return inventory.Item{}, s.err
	}
	return inventory.Item{ID: id, Status: status}, nil
}

func (s *stubInventoryService) Restore(_ context.Context, id uuid.UUID) (inventory.Item, error) {
	s.restoredID = id
	if s.err != nil {
		return inventory.Item{}, s.err
	}
	return inventory.Item{ID: id, Status: enums.FoodStatusFresh}, nil
}

func (s *stubInventoryService) Delete(_ context.Context, id uuid.UUID) error {
	s.deletedID = id
	return s.err
}

func (s *stubInventoryService) Refresh(context.Context) error { return nil }

func (s *stubInventoryService) Snapshot() []inventory.Item { return s.items }

func (s *stubInventoryService) Clear() {}

func withItemID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("itemId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestItemsListSuccess(t *testing.T) {
	svc := &stubInventoryService{items: []inventory.Item{
		{ID: uuid.New(), Name: "Milk", Status: enums.FoodStatusExpiring},
		{ID: uuid.New(), Name: "Rice", Status: enums.FoodStatusFresh},
	}}
	handler := ItemsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []inventory.Item `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 items got %d", len(envelope.Data))
	}
	if envelope.Data[0].Name != "Milk" {
		t.Fatalf("unexpected first item: %s", envelope.Data[0].Name)
	}
}

func TestItemsListDependencyFailure(t *testing.T) {
	svc := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	handler := ItemsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestItemsCreateSuccess(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ItemsCreate(svc, nil)

	body := `{"name":"Milk","category":"dairy","location":"fridge","quantity":2,"expirationDate":"2026-09-04"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUsername(req.Context(), "ana"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.createdInput.Name != "Milk" {
		t.Fatalf("unexpected name: %s", svc.createdInput.Name)
	}
	if svc.createdInput.Category != enums.FoodCategoryDairy {
		t.Fatalf("unexpected category: %s", svc.createdInput.Category)
	}
	if svc.createdInput.ExpirationDate == nil || svc.createdInput.ExpirationDate.Format(time.DateOnly) != "2026-09-04" {
		t.Fatalf("expiration date not parsed: %v", svc.createdInput.ExpirationDate)
	}
	if svc.createdInput.CreatedBy == nil || *svc.createdInput.CreatedBy != "ana" {
		t.Fatalf("created_by not attributed: %v", svc.createdInput.CreatedBy)
	}
}

func TestItemsCreateRejectsBadPayload(t *testing.T) {
	cases := map[string]string{
		"missing name":  `{"category":"dairy","location":"fridge","quantity":1}`,
		"zero quantity": `{"name":"Milk","category":"dairy","location":"fridge","quantity":0}`,
		"bad category":  `{"name":"Milk","category":"sweets","location":"fridge","quantity":1}`,
		"bad location":  `{"name":"Milk","category":"dairy","location":"garage","quantity":1}`,
		"bad date":      `{"name":"Milk","category":"dairy","location":"fridge","quantity":1,"expirationDate":"04/09/2026"}`,
		"unknown field": `{"name":"Milk","category":"dairy","location":"fridge","quantity":1,"color":"white"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubInventoryService{}
			handler := ItemsCreate(svc, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
			if svc.createdInput.Name != "" {
				t.Fatal("service should not have been called")
			}
		})
	}
}

func TestItemsUpdateNullClearsDate(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ItemsUpdate(svc, nil)
	id := uuid.New()

	body := `{"expirationDate":null}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/"+id.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withItemID(req, id.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.updatedInput.ExpirationDateSet {
		t.Fatal("expected expiration date to be marked as set")
	}
	if svc.updatedInput.ExpirationDate != nil {
		t.Fatalf("expected nil expiration date, got %v", svc.updatedInput.ExpirationDate)
	}
}

func TestItemsUpdateOmittedDateLeftAlone(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ItemsUpdate(svc, nil)
	id := uuid.New()

	body := `{"quantity":5}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/"+id.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withItemID(req, id.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.updatedInput.ExpirationDateSet {
		t.Fatal("omitted expiration date should not be marked as set")
	}
	if svc.updatedInput.Quantity == nil || *svc.updatedInput.Quantity != 5 {
		t.Fatalf("quantity not forwarded: %v", svc.updatedInput.Quantity)
	}
}

func TestItemsUpdateStatusForwarded(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ItemsUpdate(svc, nil)
	id := uuid.New()

	body := `{"status":"consumed"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/"+id.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withItemID(req, id.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.updatedInput.Status == nil || *svc.updatedInput.Status != enums.FoodStatusConsumed {
		t.Fatalf("status not forwarded: %v", svc.updatedInput.Status)
	}
}

func TestItemsUpdateInvalidID(t *testing.T) {
	handler := ItemsUpdate(&stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/items/not-a-uuid", strings.NewReader(`{"quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	req = withItemID(req, "not-a-uuid")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestItemsConsume(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ItemsConsume(svc, nil)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+id.String()+"/consume", nil)
	req = withItemID(req, id.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.statusID != id {
		t.Fatalf("unexpected id: %s", svc.statusID)
	}
	if svc.statusValue != enums.FoodStatusConsumed {
		t.Fatalf("expected consumed, got %s", svc.statusValue)
	}
}

func TestItemsRestore(t *testing.T) {
	svc := &stubInventoryService{}
	handler := ItemsRestore(svc, nil)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/"+id.String()+"/restore", nil)
	req = withItemID(req, id.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.restoredID != id {
		t.Fatalf("unexpected id: %s", svc.restoredID)
	}
}

func TestItemsDeleteNotFound(t *testing.T) {
	svc := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeNotFound, "item not found")}
	handler := ItemsDelete(svc, nil)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/items/"+id.String(), nil)
	req = withItemID(req, id.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestItemsStats(t *testing.T) {
	svc := &stubInventoryService{stats: inventory.Stats{Total: 4, FridgeFreshCount: 2, PantryFreshCount: 1, ExpiredCount: 1}}
	handler := ItemsStats(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/stats", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data inventory.Stats `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Total != 4 || envelope.Data.ExpiredCount != 1 {
		t.Fatalf("unexpected stats: %+v", envelope.Data)
	}
}

func TestItemsNilService(t *testing.T) {
	handler := ItemsList(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
