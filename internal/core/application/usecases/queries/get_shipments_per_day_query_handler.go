package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetShipmentsPerDayQueryHandler counts created shipments per UTC day.
type GetShipmentsPerDayQueryHandler struct {
	db    *gorm.DB
	cache *ReadModelCache
}

// NewGetShipmentsPerDayQueryHandler creates the handler. cache must be the
// instance the commands invalidate.
func NewGetShipmentsPerDayQueryHandler(db *gorm.DB, cache *ReadModelCache) GetShipmentsPerDayQueryHandler {
	return GetShipmentsPerDayQueryHandler{db: db, cache: cache}
}

// Handle returns one entry per day that has shipments, oldest first.
func (h GetShipmentsPerDayQueryHandler) Handle(ctx context.Context, query GetShipmentsPerDayQuery) ([]DayCount, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return readThrough(ctx, h.cache, ShipmentsPerDayCacheKey, AnalyticsTTL, h.load)
}

func (h GetShipmentsPerDayQueryHandler) load(ctx context.Context) ([]DayCount, error) {
	days := make([]DayCount, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM shipments
		GROUP BY day
		ORDER BY day
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var day DayCount
		if err = rows.Scan(&day.Date, &day.Count); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}
