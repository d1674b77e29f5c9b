package domain

import "context"

// InstallationType classifies the kind of site being quoted.
type InstallationType string

const (
	InstallationResidential InstallationType = "residential"
	InstallationCommercial  InstallationType = "commercial"
	InstallationIndustrial  InstallationType = "industrial"
)

func (t InstallationType) Valid() bool {
	switch t {
	case InstallationResidential, InstallationCommercial, InstallationIndustrial:
		return true
	}
	return false
}

// Orientation is the compass direction the roof surface faces.
type Orientation string

const (
	OrientationNorth     Orientation = "north"
	OrientationNortheast Orientation = "northeast"
	OrientationEast      Orientation = "east"
	OrientationSoutheast Orientation = "southeast"
	OrientationSouth     Orientation = "south"
	OrientationSouthwest Orientation = "southwest"
	OrientationWest      Orientation = "west"
	OrientationNorthwest Orientation = "northwest"
)

// azimuthByOrientation maps compass orientation to azimuth degrees.
// South (180) is optimal in the Northern Hemisphere.
var azimuthByOrientation = map[Orientation]int{
	OrientationNorth:     0,
	OrientationNortheast: 45,
	OrientationEast:      90,
	OrientationSoutheast: 135,
	OrientationSouth:     180,
	OrientationSouthwest: 225,
	OrientationWest:      270,
	OrientationNorthwest: 315,
}

func (o Orientation) Valid() bool {
	_, ok := azimuthByOrientation[o]
	return ok
}

// Azimuth returns the azimuth in degrees for the orientation, defaulting
// to south for unknown values.
func (o Orientation) Azimuth() int {
	if deg, ok := azimuthByOrientation[o]; ok {
		return deg
	}
	return 180
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CalculationRequest is the validated input of the estimation pipeline.
type CalculationRequest struct {
	Consumption      float64          `json:"consumption"`
	InstallationType InstallationType `json:"installationType"`
	Location         Location         `json:"location"`
	RoofOrientation  Orientation      `json:"roofOrientation"`
	RoofTilt         float64          `json:"roofTilt"`
}

// EstimateSource records where a production figure came from.
type EstimateSource string

const (
	SourcePVGIS    EstimateSource = "pvgis"
	SourceFallback EstimateSource = "fallback"
)

// ProductionEstimate is the per-kWp production figure feeding the sizing
// stage. Monthly may be empty when the upstream service omits it; Annual
// is always positive and finite once the estimate reaches downstream code.
type ProductionEstimate struct {
	AnnualPerKwp  float64        `json:"annual_per_kwp"`
	MonthlyPerKwp []float64      `json:"monthly_per_kwp,omitempty"`
	Source        EstimateSource `json:"source"`
	SourceReason  string         `json:"source_reason,omitempty"`
}

// SystemSizing is the derived system dimensioning.
type SystemSizing struct {
	SystemSizeKwp       float64 `json:"system_size_kwp"`
	PanelCount          int     `json:"panel_count"`
	TotalAnnualProdKwh  float64 `json:"total_annual_production_kwh"`
	ProductionPerKwp    float64 `json:"production_per_kwp"`
	MonthlyProduction   []int   `json:"monthly_production,omitempty"`
	UsedDefaultPerKwp   bool    `json:"-"`
}

// FinancialSummary is derived from sizing and the configured economics.
type FinancialSummary struct {
	AnnualSavings float64 `json:"annual_savings"`
	SystemCost    float64 `json:"system_cost"`
	AnnualROI     float64 `json:"annual_roi"`
}

// CalculationResult is the response payload of the calculator endpoint.
type CalculationResult struct {
	SystemSize        float64 `json:"systemSize"`
	Panels            int     `json:"panels"`
	Production        float64 `json:"production"`
	Savings           float64 `json:"savings"`
	ROI               float64 `json:"roi"`
	AnnualROI         float64 `json:"annualROI"`
	MonthlyProduction []int   `json:"monthlyProduction"`

	// DataSource surfaces estimate provenance without treating a degraded
	// estimate as a failure.
	DataSource EstimateSource `json:"dataSource"`
}

// IrradianceClient fetches per-kWp production data from the external
// irradiance service.
type IrradianceClient interface {
	FetchAnnualProduction(ctx context.Context, lat, lng, tilt float64, azimuth int) (ProductionEstimate, error)
}

// Service runs the full estimation pipeline.
type Service interface {
	Calculate(ctx context.Context, req CalculationRequest) (CalculationResult, error)
}
