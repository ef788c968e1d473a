// Package jobs provides scheduled background tasks for the tracking service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. AnalyticsRefreshJob - Rebuilds the cached analytics overview (every 5 minutes by default)
// 2. SubscriptionStatsJob - Logs and exports the live subscription counts every minute
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(overviewHandler, schedule, registry, metrics, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six field cron syntax with seconds. The analytics schedule is
// configurable through ANALYTICS_REFRESH_SCHEDULE.
//
// # Error Handling
//
// - Refresh failures are logged; the cache keeps serving the previous overview until it expires
// - Failed job starts will stop any already running jobs
package jobs
