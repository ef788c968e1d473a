package queries

import (
	"context"

	"tracking/internal/core/domain/model/eta"
	"tracking/internal/core/domain/model/shipment"

	"gorm.io/gorm"
)

// GetAnalyticsOverviewQueryHandler computes the dashboard aggregates.
// The result is cached for AnalyticsTTL; any shipment mutation invalidates it.
type GetAnalyticsOverviewQueryHandler struct {
	db    *gorm.DB
	cache *ReadModelCache
}

// NewGetAnalyticsOverviewQueryHandler creates the handler. cache must be the
// instance the commands invalidate.
func NewGetAnalyticsOverviewQueryHandler(db *gorm.DB, cache *ReadModelCache) GetAnalyticsOverviewQueryHandler {
	return GetAnalyticsOverviewQueryHandler{db: db, cache: cache}
}

// Handle returns the cached overview or computes it.
func (h GetAnalyticsOverviewQueryHandler) Handle(ctx context.Context, query GetAnalyticsOverviewQuery) (AnalyticsOverview, error) {
	if err := query.Validate(); err != nil {
		return AnalyticsOverview{}, err
	}

	return readThrough(ctx, h.cache, AnalyticsOverviewCacheKey, AnalyticsTTL, h.load)
}

// Refresh recomputes the overview and overwrites the cache entry, so the next
// reader does not pay for the aggregation.
func (h GetAnalyticsOverviewQueryHandler) Refresh(ctx context.Context) (AnalyticsOverview, error) {
	return refresh(ctx, h.cache, AnalyticsOverviewCacheKey, AnalyticsTTL, h.load)
}

func (h GetAnalyticsOverviewQueryHandler) load(ctx context.Context) (AnalyticsOverview, error) {
	db := h.db.WithContext(ctx)
	overview := AnalyticsOverview{
		ByStatus:  make(map[string]int64),
		TopRoutes: make([]RouteCount, 0, topRoutesLimit),
		TopRoute:  "N/A",
	}

	var totals struct {
		Total      int64
		AverageETA float64
		Degraded   int64
	}
	if err := db.Raw(`
		SELECT
			COUNT(*) AS total,
			COALESCE(AVG(current_eta_minutes), 0) AS average_eta,
			COUNT(*) FILTER (WHERE confidence = ?) AS degraded
		FROM shipments
	`, eta.ConfidenceFallback.String()).Scan(&totals).Error; err != nil {
		return AnalyticsOverview{}, err
	}
	overview.TotalShipments = totals.Total
	overview.AverageETA = eta.Round2(totals.AverageETA)
	overview.DegradedETAs = totals.Degraded

	var statuses []struct {
		Status int
		Count  int64
	}
	if err := db.Raw(`
		SELECT status, COUNT(*) AS count
		FROM shipments
		GROUP BY status
	`).Scan(&statuses).Error; err != nil {
		return AnalyticsOverview{}, err
	}
	for _, s := range statuses {
		overview.ByStatus[shipment.Status(s.Status).String()] = s.Count
	}

	rows, err := db.Raw(`
		SELECT pickup_address || ' → ' || delivery_address AS name, COUNT(*) AS value
		FROM shipments
		GROUP BY pickup_address, delivery_address
		ORDER BY value DESC, name
		LIMIT ?
	`, topRoutesLimit).Rows()
	if err != nil {
		return AnalyticsOverview{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var route RouteCount
		if err = rows.Scan(&route.Name, &route.Value); err != nil {
			return AnalyticsOverview{}, err
		}
		overview.TopRoutes = append(overview.TopRoutes, route)
	}
	if err = rows.Err(); err != nil {
		return AnalyticsOverview{}, err
	}

	if len(overview.TopRoutes) > 0 {
		overview.TopRoute = overview.TopRoutes[0].Name
	}

	return overview, nil
}
