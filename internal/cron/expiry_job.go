package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/refriproject/refri-backend/internal/inventory"
	"github.com/refriproject/refri-backend/pkg/db/models"
	"github.com/refriproject/refri-backend/pkg/enums"
	"github.com/refriproject/refri-backend/pkg/logger"
	"github.com/refriproject/refri-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	expirySweepJobName = "expiry-sweep"
	defaultBatchSize   = 200
)

type sweepRepository interface {
	ListNonTerminal(ctx context.Context, offset, limit int) ([]models.FoodItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.FoodStatus) (int64, error)
}

// ExpirySweepJobParams configure the sweep.
type ExpirySweepJobParams struct {
	Repo        sweepRepository
	Logger      *logger.Logger
	Metrics     *metrics.JobMetrics
	HorizonDays int
	BatchSize   int
	// Now overrides the clock, mainly for tests. Defaults to time.Now.
	Now func() time.Time
}

// ExpirySweepJob walks every non-consumed item and persists the status the
// classifier would assign today. Readers reclassify on load anyway; the sweep
// keeps the stored column from drifting so SQL filters and reports stay
// truthful.
type ExpirySweepJob struct {
	repo        sweepRepository
	logg        *logger.Logger
	metrics     *metrics.JobMetrics
	horizonDays int
	batchSize   int
	now         func() time.Time
}

// NewExpirySweepJob builds the sweep job.
func NewExpirySweepJob(params ExpirySweepJobParams) (*ExpirySweepJob, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	horizon := params.HorizonDays
	if horizon <= 0 {
		horizon = inventory.DefaultHorizonDays
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &ExpirySweepJob{
		repo:        params.Repo,
		logg:        params.Logger,
		metrics:     params.Metrics,
		horizonDays: horizon,
		batchSize:   batchSize,
		now:         now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *ExpirySweepJob) Name() string {
	return expirySweepJobName
}

// Run pages through non-consumed items and rewrites any persisted status
// that no longer matches the classifier. A failed row does not stop the
// sweep; failures are collected and reported together.
func (j *ExpirySweepJob) Run(ctx context.Context) error {
	today := j.now()
	offset := 0
	swept := 0
	var errs error

	for {
		rows, err := j.repo.ListNonTerminal(ctx, offset, j.batchSize)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list items: %w", err))
		}

		for _, row := range rows {
			want := inventory.Classify(row.ExpirationDate, today, j.horizonDays)
			if want == row.Status {
				continue
			}
			if _, err := j.repo.UpdateStatus(ctx, row.ID, want); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("update item %s: %w", row.ID, err))
				continue
			}
			swept++
		}

		if len(rows) < j.batchSize {
			break
		}
		offset += j.batchSize
	}

	if swept > 0 {
		j.logg.Info(j.logg.WithField(ctx, "swept", swept), "persisted status moved forward")
		if j.metrics != nil {
			j.metrics.AddSwept(j.Name(), swept)
		}
	}
	return errs
}
