package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	analyticsRefreshJob  *AnalyticsRefreshJob
	subscriptionStatsJob *SubscriptionStatsJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	refresher AnalyticsRefresher,
	analyticsSchedule string,
	statsSource StatsSource,
	statsSink StatsSink,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		analyticsRefreshJob:  NewAnalyticsRefreshJob(refresher, analyticsSchedule, logger),
		subscriptionStatsJob: NewSubscriptionStatsJob(statsSource, statsSink, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.analyticsRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start analytics refresh job: %w", err)
	}

	if err := jm.subscriptionStatsJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.analyticsRefreshJob.Stop()
		return fmt.Errorf("failed to start subscription stats job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.analyticsRefreshJob.Stop()
	jm.subscriptionStatsJob.Stop()
}
