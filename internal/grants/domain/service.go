package domain

import (
	"context"
	"errors"
)

// CalculationRequest carries the jurisdiction and system figures the
// incentive calculator operates on.
type CalculationRequest struct {
	AutonomousCommunity string  `json:"autonomousCommunity"`
	Province            string  `json:"province,omitempty"`
	Municipality        string  `json:"municipality,omitempty"`
	SystemSizeKwp       float64 `json:"systemSizeKwp"`
	TotalCost           float64 `json:"totalCost"`
	CurrentAnnualIBI    float64 `json:"currentAnnualIbi,omitempty"`
}

type Service interface {
	Calculate(ctx context.Context, req CalculationRequest) (GrantCalculation, error)
}

var (
	ErrInvalidRegion     = errors.New("invalid_autonomous_community")
	ErrInvalidSystemSize = errors.New("invalid_system_size_kwp")
	ErrInvalidTotalCost  = errors.New("invalid_total_cost")
)

// Validate rejects malformed input; the lookup itself is best-effort but
// input validation is not.
func (r CalculationRequest) Validate() error {
	if r.AutonomousCommunity == "" {
		return ErrInvalidRegion
	}
	if r.SystemSizeKwp <= 0 {
		return ErrInvalidSystemSize
	}
	if r.TotalCost <= 0 {
		return ErrInvalidTotalCost
	}
	if r.CurrentAnnualIBI < 0 {
		return ErrInvalidTotalCost
	}
	return nil
}
