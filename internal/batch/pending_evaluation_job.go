package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loan-origination/internal/domain/loan"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
)

const (
	PendingEvaluationJobName = "PendingEvaluation"

	defaultBatchSize   = 100
	defaultConcurrency = 4
)

// PendingEvaluationJob re-runs scoring for applications stuck in PENDING,
// which happens when a submission was stored but its evaluation failed.
// Results are only written to rows that are still PENDING, so an officer
// decision taken while the job runs is never overwritten.
type PendingEvaluationJob struct {
	loanService loan.LoanService
	minAge      time.Duration
	batchSize   int
	concurrency int
	logger      *slog.Logger
}

func NewPendingEvaluationJob(loanSvc loan.LoanService, minAge time.Duration, logger *slog.Logger) *PendingEvaluationJob {
	if loanSvc == nil || logger == nil {
		panic("PendingEvaluationJob dependencies cannot be nil")
	}
	if minAge < 0 {
		minAge = 0
	}
	return &PendingEvaluationJob{
		loanService: loanSvc,
		minAge:      minAge,
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
		logger:      logger.With("job", PendingEvaluationJobName),
	}
}

func (j *PendingEvaluationJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting pending application re-evaluation job.", slog.Duration("min_age", j.minAge))

	pending, err := j.loanService.ListStalePending(ctx, j.minAge, j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list stale pending applications, aborting job.", slog.Any("error", err))
		monitoring.RecordBatchRun(PendingEvaluationJobName, "failure")
		return fmt.Errorf("cannot run job, failed to list pending applications: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched stale pending applications.", slog.Int("count", len(pending)))

	if len(pending) == 0 {
		j.logger.InfoContext(ctx, "No stale pending applications found.", slog.Duration("duration", time.Since(startTime)))
		monitoring.RecordBatchRun(PendingEvaluationJobName, "success")
		return nil
	}

	var wg sync.WaitGroup
	var evaluated, approved, rejected, skipped, errorCount atomic.Int32
	sem := make(chan struct{}, j.concurrency)

	for _, app := range pending {
		if ctx.Err() != nil {
			j.logger.WarnContext(ctx, "Job context done, stopping dispatch.", slog.Any("error", ctx.Err()))
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(loanID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			logCtx := j.logger.With(slog.Int64("loanID", loanID))
			result, evalErr := j.loanService.EvaluatePending(ctx, loanID)
			if evalErr != nil {
				switch {
				case errors.Is(evalErr, apperrors.ErrNotFound):
					logCtx.WarnContext(ctx, "Application or applicant profile vanished before re-evaluation", slog.Any("error", evalErr))
					skipped.Add(1)
				case errors.Is(evalErr, apperrors.ErrConflict):
					logCtx.InfoContext(ctx, "Application decided meanwhile, leaving it as is", slog.Any("error", evalErr))
					skipped.Add(1)
				default:
					logCtx.ErrorContext(ctx, "Failed to re-evaluate application", slog.Any("error", evalErr))
					errorCount.Add(1)
				}
				return
			}

			evaluated.Add(1)
			switch result.Status {
			case loan.StatusApproved:
				approved.Add(1)
			case loan.StatusRejected:
				rejected.Add(1)
			}
			logCtx.DebugContext(ctx, "Application re-evaluated.", slog.String("status", string(result.Status)))
		}(app.ID)
	}

	wg.Wait()
	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("total_pending", len(pending)),
		slog.Int("evaluated", int(evaluated.Load())),
		slog.Int("approved", int(approved.Load())),
		slog.Int("rejected", int(rejected.Load())),
		slog.Int("skipped", int(skipped.Load())),
		slog.Int("errors_encountered", int(errorCount.Load())),
	)

	if n := errorCount.Load(); n > 0 {
		summaryLog.WarnContext(ctx, "Pending application re-evaluation job finished with errors.")
		monitoring.RecordBatchRun(PendingEvaluationJobName, "failure")
		return fmt.Errorf("job completed with %d errors", n)
	}
	summaryLog.InfoContext(ctx, "Pending application re-evaluation job finished successfully.")
	monitoring.RecordBatchRun(PendingEvaluationJobName, "success")
	return nil
}
