package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	defaultSchedule   = "*/15 * * * *"
	defaultJobTimeout = 5 * time.Minute
)

type Job interface {
	Run(ctx context.Context) error
}

// Schedule registers job on c under spec, each run bounded by timeout.
// Empty spec or non-positive timeout fall back to the defaults.
func Schedule(c *cron.Cron, name, spec string, timeout time.Duration, job Job, logger *slog.Logger) (cron.EntryID, error) {
	if spec == "" {
		spec = defaultSchedule
		logger.Warn("Batch schedule not configured, using default", "job_name", name, "schedule", spec)
	}
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	jobLogger := logger.With("job_name", name)
	id, err := c.AddJob(spec, cron.FuncJob(func() {
		jobLogger.Info("Cron triggered: running job.")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if runErr := job.Run(ctx); runErr != nil {
			jobLogger.Error("Job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Job finished successfully.")
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule job", "job_name", name, "schedule", spec, slog.Any("error", err))
		return 0, err
	}
	logger.Info("Scheduled job", "job_name", name, "schedule", spec, "job_id", id)
	return id, nil
}
