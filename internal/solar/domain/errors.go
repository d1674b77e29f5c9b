package domain

import "errors"

var (
	ErrInvalidConsumption      = errors.New("invalid_consumption")
	ErrInvalidInstallationType = errors.New("invalid_installation_type")
	ErrInvalidLatitude         = errors.New("invalid_latitude")
	ErrInvalidLongitude        = errors.New("invalid_longitude")
	ErrInvalidOrientation      = errors.New("invalid_orientation")
	ErrInvalidTilt             = errors.New("invalid_tilt")

	// ErrImplausibleSizing marks a derived system size outside plausible
	// bounds; it indicates corrupted input or a derivation defect and is
	// surfaced as an internal fault.
	ErrImplausibleSizing = errors.New("implausible_system_size")
)

// MaxConsumptionKwhYear bounds accepted annual consumption.
const MaxConsumptionKwhYear = 1_000_000

// Validate range-checks every field; invalid input is rejected before any
// external call is made.
func (r CalculationRequest) Validate() error {
	if r.Consumption <= 0 || r.Consumption > MaxConsumptionKwhYear {
		return ErrInvalidConsumption
	}
	if !r.InstallationType.Valid() {
		return ErrInvalidInstallationType
	}
	if r.Location.Lat < -90 || r.Location.Lat > 90 {
		return ErrInvalidLatitude
	}
	if r.Location.Lng < -180 || r.Location.Lng > 180 {
		return ErrInvalidLongitude
	}
	if !r.RoofOrientation.Valid() {
		return ErrInvalidOrientation
	}
	if r.RoofTilt < 0 || r.RoofTilt > 90 {
		return ErrInvalidTilt
	}
	return nil
}
