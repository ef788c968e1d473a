package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"tracking/internal/core/application/realtime"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRefresher struct{ mock.Mock }

func (m *MockRefresher) Refresh(ctx context.Context) (queries.AnalyticsOverview, error) {
	args := m.Called(ctx)
	return args.Get(0).(queries.AnalyticsOverview), args.Error(1)
}

type MockStatsSink struct{ mock.Mock }

func (m *MockStatsSink) SetSubscriptions(tokens, connections, subscriptions int) {
	m.Called(tokens, connections, subscriptions)
}

type fixedStats realtime.Stats

func (s fixedStats) Stats() realtime.Stats { return realtime.Stats(s) }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalyticsRefreshJob_Run(t *testing.T) {
	refresher := new(MockRefresher)
	refresher.On("Refresh", mock.Anything).Return(queries.AnalyticsOverview{TotalShipments: 4}, nil).Once()
	refresher.On("Refresh", mock.Anything).Return(queries.AnalyticsOverview{}, errors.New("db down")).Once()

	job := jobs.NewAnalyticsRefreshJob(refresher, "", discard())
	job.Run()
	job.Run()

	refresher.AssertNumberOfCalls(t, "Refresh", 2)
}

func TestAnalyticsRefreshJob_InvalidSchedule(t *testing.T) {
	job := jobs.NewAnalyticsRefreshJob(new(MockRefresher), "every five minutes", discard())

	require.Error(t, job.Start())
}

func TestSubscriptionStatsJob_Run(t *testing.T) {
	sink := new(MockStatsSink)
	sink.On("SetSubscriptions", 2, 3, 5).Once()

	job := jobs.NewSubscriptionStatsJob(fixedStats{Tokens: 2, Connections: 3, Subscriptions: 5}, sink, discard())
	job.Run()

	sink.AssertExpectations(t)
}

func TestJobManager_StartStop(t *testing.T) {
	manager := jobs.NewJobManager(new(MockRefresher), jobs.DefaultAnalyticsRefreshSchedule,
		fixedStats{}, nil, discard())

	require.NoError(t, manager.StartAll())
	manager.StopAll()
}

func TestJobManager_BadScheduleFailsStart(t *testing.T) {
	manager := jobs.NewJobManager(new(MockRefresher), "* *", fixedStats{}, nil, discard())

	err := manager.StartAll()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analytics refresh job")
}
