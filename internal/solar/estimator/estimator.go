// Package estimator is the analytical backstop for the irradiance service.
// It never fails and never returns a non-positive figure.
package estimator

import (
	"math"

	"github.com/helioscrm/helios/internal/solar/domain"
)

const (
	// Average Spanish production per installed kWp.
	baseProductionKwhKwp = 1400

	southernLatitude = 37
	northernLatitude = 42

	optimalTiltDegrees = 30
)

// Estimate returns estimated annual production in kWh/kWp/year for the
// given site. Pure function over static tables and a tilt correction.
func Estimate(lat float64, orientation domain.Orientation, tilt float64) float64 {
	production := float64(baseProductionKwhKwp)

	// Latitude band: sunnier south yields more.
	if lat < southernLatitude {
		production += 200
	} else if lat > northernLatitude {
		production -= 150
	}

	production *= orientationFactor(orientation)

	// 30 degrees is the optimal tilt in Spain; flat or steep roofs lose
	// half a percent per degree of deviation.
	tiltFactor := 1 - math.Abs(tilt-optimalTiltDegrees)*0.005
	if tiltFactor < 0.1 {
		tiltFactor = 0.1
	}
	production *= tiltFactor

	return math.Round(production)
}

func orientationFactor(orientation domain.Orientation) float64 {
	switch orientation {
	case domain.OrientationSouth:
		return 1.0
	case domain.OrientationSoutheast, domain.OrientationSouthwest:
		return 0.95
	case domain.OrientationEast, domain.OrientationWest:
		return 0.85
	default:
		return 0.7
	}
}
