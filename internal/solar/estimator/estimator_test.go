package estimator

import (
	"math"
	"testing"

	"github.com/helioscrm/helios/internal/solar/domain"
	"github.com/stretchr/testify/assert"
)

func TestEstimate_AlwaysPositiveAndFinite(t *testing.T) {
	orientations := []domain.Orientation{
		domain.OrientationNorth,
		domain.OrientationNortheast,
		domain.OrientationEast,
		domain.OrientationSoutheast,
		domain.OrientationSouth,
		domain.OrientationSouthwest,
		domain.OrientationWest,
		domain.OrientationNorthwest,
	}

	for lat := -90.0; lat <= 90.0; lat += 15 {
		for _, orientation := range orientations {
			for tilt := 0.0; tilt <= 90.0; tilt += 10 {
				got := Estimate(lat, orientation, tilt)
				assert.Greater(t, got, 0.0, "lat=%v orientation=%s tilt=%v", lat, orientation, tilt)
				assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
			}
		}
	}
}

func TestEstimate_MadridSouthOptimalTilt(t *testing.T) {
	got := Estimate(40.4, domain.OrientationSouth, 30)
	assert.Equal(t, 1400.0, got)
}

func TestEstimate_SouthernLatitudeYieldsMore(t *testing.T) {
	seville := Estimate(36.5, domain.OrientationSouth, 30)
	bilbao := Estimate(43.3, domain.OrientationSouth, 30)
	assert.Greater(t, seville, bilbao)
}

func TestEstimate_OrientationOrdering(t *testing.T) {
	south := Estimate(40.4, domain.OrientationSouth, 30)
	southeast := Estimate(40.4, domain.OrientationSoutheast, 30)
	east := Estimate(40.4, domain.OrientationEast, 30)
	north := Estimate(40.4, domain.OrientationNorth, 30)

	assert.Greater(t, south, southeast)
	assert.Greater(t, southeast, east)
	assert.Greater(t, east, north)
}

func TestEstimate_TiltDeviationReducesYield(t *testing.T) {
	optimal := Estimate(40.4, domain.OrientationSouth, 30)
	flat := Estimate(40.4, domain.OrientationSouth, 0)
	steep := Estimate(40.4, domain.OrientationSouth, 90)

	assert.Greater(t, optimal, flat)
	assert.Greater(t, optimal, steep)
}
