package kernel_test

import (
	"fmt"
	"math"
	"testing"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	t.Run("accepts the closed range bounds", func(t *testing.T) {
		bounds := [][2]float64{
			{-90, -180}, {90, 180}, {0, 0}, {-90, 180}, {90, -180},
		}
		for _, b := range bounds {
			t.Run(fmt.Sprintf("%g,%g", b[0], b[1]), func(t *testing.T) {
				c, err := kernel.NewCoordinate(b[0], b[1])

				require.NoError(t, err)
				require.NoError(t, c.Validate())
				assert.InDelta(t, b[0], c.Lat(), 0)
				assert.InDelta(t, b[1], c.Lng(), 0)
			})
		}
	})

	t.Run("rejects values outside the range", func(t *testing.T) {
		invalid := [][2]float64{
			{90.0001, 0}, {-90.5, 0}, {0, 180.1}, {0, -181}, {math.NaN(), 0}, {0, math.NaN()},
		}
		for _, v := range invalid {
			t.Run(fmt.Sprintf("%g,%g", v[0], v[1]), func(t *testing.T) {
				c, err := kernel.NewCoordinate(v[0], v[1])

				require.ErrorIs(t, err, kernel.ErrInvalidCoordinate)
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				require.ErrorIs(t, c.Validate(), kernel.ErrCoordinateIsNotConstructed)

				var coordErr *kernel.InvalidCoordinateError
				require.ErrorAs(t, err, &coordErr)
				assert.Contains(t, coordErr.Error(), "invalid coordinate")
			})
		}
	})
}

func TestCoordinate_DistanceTo(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		c, _ := kernel.NewCoordinate(51.5074, -0.1278)

		d, err := c.DistanceTo(c)

		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-9)
	})

	t.Run("london to paris", func(t *testing.T) {
		london, _ := kernel.NewCoordinate(51.5074, -0.1278)
		paris, _ := kernel.NewCoordinate(48.8566, 2.3522)

		d, err := london.DistanceTo(paris)

		require.NoError(t, err)
		assert.InDelta(t, 343.5, d, 1.0)
	})

	t.Run("is symmetric", func(t *testing.T) {
		a, _ := kernel.NewCoordinate(28.6139, 77.2090)
		b, _ := kernel.NewCoordinate(19.0760, 72.8777)

		ab, _ := a.DistanceTo(b)
		ba, _ := b.DistanceTo(a)

		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a, _ := kernel.NewCoordinate(0, 0)
		b, _ := kernel.NewCoordinate(1, 0)

		d, _ := a.DistanceTo(b)

		assert.InDelta(t, kernel.EarthRadiusKm*math.Pi/180, d, 1e-6)
	})

	t.Run("zero value is rejected", func(t *testing.T) {
		a, _ := kernel.NewCoordinate(0, 0)

		_, err := a.DistanceTo(kernel.Coordinate{})

		require.ErrorIs(t, err, kernel.ErrCoordinateIsNotConstructed)
	})
}

func TestCoordinate_IsEqual(t *testing.T) {
	a, _ := kernel.NewCoordinate(10, 20)
	b, _ := kernel.NewCoordinate(10, 20)
	c, _ := kernel.NewCoordinate(10, 21)

	eq, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, eq)

	_, err = a.IsEqual(kernel.Coordinate{})
	require.Error(t, err)
}
