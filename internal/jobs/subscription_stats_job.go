package jobs

import (
	"context"
	"log/slog"

	"tracking/internal/core/application/realtime"

	"github.com/robfig/cron/v3"
)

const subscriptionStatsSchedule = "0 * * * * *"

// StatsSource reports the current size of the subscription registry.
type StatsSource interface {
	Stats() realtime.Stats
}

// StatsSink exports the registry size, e.g. as gauges.
type StatsSink interface {
	SetSubscriptions(tokens, connections, subscriptions int)
}

// SubscriptionStatsJob logs and exports the registry size every minute.
type SubscriptionStatsJob struct {
	source StatsSource
	sink   StatsSink
	cron   *cron.Cron
	logger *slog.Logger
}

// NewSubscriptionStatsJob creates the job. sink may be nil, in which case the stats are only logged.
func NewSubscriptionStatsJob(source StatsSource, sink StatsSink, logger *slog.Logger) *SubscriptionStatsJob {
	return &SubscriptionStatsJob{
		source: source,
		sink:   sink,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "subscription_stats_job"),
	}
}

// Start begins the stats job to run every minute.
func (j *SubscriptionStatsJob) Start() error {
	if _, err := j.cron.AddFunc(subscriptionStatsSchedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Subscription stats job started (running every minute)")
	return nil
}

// Run takes one sample.
func (j *SubscriptionStatsJob) Run() {
	stats := j.source.Stats()
	if j.sink != nil {
		j.sink.SetSubscriptions(stats.Tokens, stats.Connections, stats.Subscriptions)
	}
	j.logger.InfoContext(context.Background(), "Live subscriptions",
		"trackingNumbers", stats.Tokens,
		"connections", stats.Connections,
		"subscriptions", stats.Subscriptions)
}

// Stop stops the subscription stats job.
func (j *SubscriptionStatsJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Subscription stats job stopped")
}
