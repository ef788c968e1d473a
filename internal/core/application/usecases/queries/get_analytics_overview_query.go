package queries

import (
	"errors"

	"tracking/internal/pkg/guard"
)

var ErrGetAnalyticsOverviewQueryIsNotConstructed = errors.New(
	"GetAnalyticsOverviewQuery must be created via NewGetAnalyticsOverviewQuery constructor",
)

const topRoutesLimit = 6

// GetAnalyticsOverviewQuery reads the dashboard aggregates over all shipments.
type GetAnalyticsOverviewQuery struct {
	guard guard.ConstructorGuard
}

func NewGetAnalyticsOverviewQuery() GetAnalyticsOverviewQuery {
	return GetAnalyticsOverviewQuery{guard: guard.NewConstructorGuard()}
}

func (q GetAnalyticsOverviewQuery) Validate() error {
	return q.guard.Validate(ErrGetAnalyticsOverviewQueryIsNotConstructed)
}

// RouteCount is one "pickup → delivery" pair and how many shipments used it.
type RouteCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// AnalyticsOverview is the dashboard read model.
type AnalyticsOverview struct {
	TotalShipments int64            `json:"totalShipments"`
	AverageETA     float64          `json:"averageETA"`
	ByStatus       map[string]int64 `json:"byStatus"`
	DegradedETAs   int64            `json:"degradedEtas"`
	TopRoute       string           `json:"topRoute"`
	TopRoutes      []RouteCount     `json:"topRoutes"`
}
