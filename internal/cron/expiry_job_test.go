package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/pkg/db/models"
	"github.com/refriproject/refri-backend/pkg/enums"
	"github.com/refriproject/refri-backend/pkg/logger"
)

type fakeSweepRepo struct {
	rows      []models.FoodItem
	updates   map[uuid.UUID]enums.FoodStatus
	listErr   error
	updateErr error
	listCalls int
}

func newFakeSweepRepo(rows ...models.FoodItem) *fakeSweepRepo {
	return &fakeSweepRepo{rows: rows, updates: map[uuid.UUID]enums.FoodStatus{}}
}

func (f *fakeSweepRepo) ListNonTerminal(_ context.Context, offset, limit int) ([]models.FoodItem, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[offset:end], nil
}

func (f *fakeSweepRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.FoodStatus) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	f.updates[id] = status
	return 1, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func fixedClock(t *testing.T, value string) func() time.Time {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return func() time.Time { return parsed }
}

func sweepRow(t *testing.T, status enums.FoodStatus, expiration string) models.FoodItem {
	t.Helper()
	row := models.FoodItem{
		ID:       uuid.New(),
		Name:     "item",
		Category: enums.FoodCategoryOther,
		Location: enums.FoodLocationFridge,
		Quantity: 1,
		Status:   status,
	}
	if expiration != "" {
		parsed, err := time.Parse(time.DateOnly, expiration)
		if err != nil {
			t.Fatalf("parse date %q: %v", expiration, err)
		}
		row.ExpirationDate = &parsed
	}
	return row
}

func TestExpirySweepPersistsDrift(t *testing.T) {
	stale := sweepRow(t, enums.FoodStatusFresh, "2024-06-01")
	nearing := sweepRow(t, enums.FoodStatusFresh, "2024-06-12")
	current := sweepRow(t, enums.FoodStatusExpiring, "2024-06-12")
	undated := sweepRow(t, enums.FoodStatusFresh, "")
	repo := newFakeSweepRepo(stale, nearing, current, undated)

	job, err := NewExpirySweepJob(ExpirySweepJobParams{
		Repo:   repo,
		Logger: testLogger(),
		Now:    fixedClock(t, "2024-06-10"),
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := repo.updates[stale.ID]; got != enums.FoodStatusExpired {
		t.Fatalf("expected stale row swept to expired, got %q", got)
	}
	if got := repo.updates[nearing.ID]; got != enums.FoodStatusExpiring {
		t.Fatalf("expected nearing row swept to expiring, got %q", got)
	}
	if _, touched := repo.updates[current.ID]; touched {
		t.Fatal("row already matching the classifier must not be rewritten")
	}
	if _, touched := repo.updates[undated.ID]; touched {
		t.Fatal("undated fresh row must not be rewritten")
	}
}

func TestExpirySweepPagesThroughBatches(t *testing.T) {
	rows := make([]models.FoodItem, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, sweepRow(t, enums.FoodStatusFresh, "2024-06-01"))
	}
	repo := newFakeSweepRepo(rows...)

	job, err := NewExpirySweepJob(ExpirySweepJobParams{
		Repo:      repo,
		Logger:    testLogger(),
		BatchSize: 2,
		Now:       fixedClock(t, "2024-06-10"),
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(repo.updates) != 5 {
		t.Fatalf("expected all 5 rows swept, got %d", len(repo.updates))
	}
	if repo.listCalls < 3 {
		t.Fatalf("expected at least 3 pages, got %d", repo.listCalls)
	}
}

func TestExpirySweepCollectsRowFailures(t *testing.T) {
	repo := newFakeSweepRepo(
		sweepRow(t, enums.FoodStatusFresh, "2024-06-01"),
		sweepRow(t, enums.FoodStatusFresh, "2024-06-02"),
	)
	repo.updateErr = errors.New("connection reset")

	job, err := NewExpirySweepJob(ExpirySweepJobParams{
		Repo:   repo,
		Logger: testLogger(),
		Now:    fixedClock(t, "2024-06-10"),
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}

	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected aggregated failure")
	}
}

func TestExpirySweepListFailureAborts(t *testing.T) {
	repo := newFakeSweepRepo()
	repo.listErr = errors.New("connection refused")

	job, err := NewExpirySweepJob(ExpirySweepJobParams{
		Repo:   repo,
		Logger: testLogger(),
		Now:    fixedClock(t, "2024-06-10"),
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected list failure to surface")
	}
}
