package queries_test

import (
	"testing"

	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetTrackingSnapshotQuery_Valid(t *testing.T) {
	query, err := queries.NewGetTrackingSnapshotQuery("TRKM4X2Q9ZAB12C")
	require.NoError(t, err)

	require.NoError(t, query.Validate())
	assert.Equal(t, shipment.TrackingNumber("TRKM4X2Q9ZAB12C"), query.TrackingNumber())
}

func TestNewGetTrackingSnapshotQuery_InvalidNumber(t *testing.T) {
	tests := []struct {
		name   string
		number shipment.TrackingNumber
		want   error
	}{
		{"empty", "", errs.ErrValueIsRequired},
		{"wrong prefix", "ABC123456789", errs.ErrValueIsInvalid},
		{"too short", "TRK12", errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := queries.NewGetTrackingSnapshotQuery(tt.number)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetTrackingSnapshotQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetTrackingSnapshotQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetTrackingSnapshotQueryIsNotConstructed)
}

func TestNewGetAnalyticsOverviewQuery_Valid(t *testing.T) {
	query := queries.NewGetAnalyticsOverviewQuery()
	require.NoError(t, query.Validate())
}

func TestGetAnalyticsOverviewQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetAnalyticsOverviewQuery{}
	assert.ErrorIs(t, query.Validate(), queries.ErrGetAnalyticsOverviewQueryIsNotConstructed)
}

func TestNewGetShipmentsPerDayQuery_Valid(t *testing.T) {
	query := queries.NewGetShipmentsPerDayQuery()
	require.NoError(t, query.Validate())
}

func TestGetShipmentsPerDayQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetShipmentsPerDayQuery{}
	assert.ErrorIs(t, query.Validate(), queries.ErrGetShipmentsPerDayQueryIsNotConstructed)
}

func TestTrackingCacheKey(t *testing.T) {
	assert.Equal(t, "track:TRKM4X2Q9ZAB12C", queries.TrackingCacheKey("TRKM4X2Q9ZAB12C"))
	assert.NotContains(t, queries.TrackingCacheKey("TRKM4X2Q9ZAB12C"), queries.AnalyticsCachePrefix)
}
