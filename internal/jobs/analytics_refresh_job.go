package jobs

import (
	"context"
	"log/slog"
	"time"

	"tracking/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// DefaultAnalyticsRefreshSchedule runs at second 0 of every fifth minute.
const DefaultAnalyticsRefreshSchedule = "0 */5 * * * *"

const analyticsRefreshTimeout = 30 * time.Second

// AnalyticsRefresher rebuilds the cached dashboard overview.
type AnalyticsRefresher interface {
	Refresh(ctx context.Context) (queries.AnalyticsOverview, error)
}

// AnalyticsRefreshJob keeps the analytics overview warm, so the first reader
// after expiry or invalidation does not pay for the aggregation.
type AnalyticsRefreshJob struct {
	refresher AnalyticsRefresher
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewAnalyticsRefreshJob creates the job. An empty schedule means DefaultAnalyticsRefreshSchedule.
func NewAnalyticsRefreshJob(refresher AnalyticsRefresher, schedule string, logger *slog.Logger) *AnalyticsRefreshJob {
	if schedule == "" {
		schedule = DefaultAnalyticsRefreshSchedule
	}
	return &AnalyticsRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "analytics_refresh_job"),
	}
}

// Start schedules the refresh. It fails on a malformed schedule.
func (j *AnalyticsRefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Analytics refresh job started", "schedule", j.schedule)
	return nil
}

// Run performs one refresh.
func (j *AnalyticsRefreshJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), analyticsRefreshTimeout)
	defer cancel()

	overview, err := j.refresher.Refresh(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Analytics refresh job failed", "error", err)
		return
	}
	j.logger.DebugContext(ctx, "Analytics refreshed", "totalShipments", overview.TotalShipments)
}

// Stop stops scheduling; a running refresh is not interrupted.
func (j *AnalyticsRefreshJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Analytics refresh job stopped")
}
