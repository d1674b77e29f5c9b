package service

import (
	"context"
	"math"
	"time"

	"github.com/helioscrm/helios/internal/grants/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// icioBaseShare is the standard assumption that construction tax applies
// to 4% of total installation cost.
const icioBaseShare = 0.04

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("grants.service"),
		repo: p.Repo,
	}
}

// Calculate computes every incentive applicable to the given jurisdiction
// and system. A failed rules lookup degrades to an all-zero result rather
// than failing: incentive lookup must never block the estimation flow.
func (s *Service) Calculate(ctx context.Context, req domain.CalculationRequest) (domain.GrantCalculation, error) {
	if err := req.Validate(); err != nil {
		return domain.GrantCalculation{}, err
	}

	now := time.Now().UTC()
	rules, err := s.repo.FindApplicable(ctx, s.db, domain.RuleQuery{
		AutonomousCommunity: req.AutonomousCommunity,
		Province:            req.Province,
		Municipality:        req.Municipality,
		PowerKwp:            req.SystemSizeKwp,
		ReferenceDate:       now,
	})
	if err != nil {
		s.log.Warn("grant rules lookup failed, returning degraded result",
			zap.String("autonomous_community", req.AutonomousCommunity),
			zap.Error(err),
		)
		return degradedResult(req, err.Error(), now), nil
	}

	irpf := calculateIRPF(rules, req.TotalCost)
	ibi := calculateIBI(rules, req.CurrentAnnualIBI)
	icio := calculateICIO(rules, req.TotalCost)
	direct := collectDirectGrants(rules)

	totalDirect := 0.0
	for _, g := range direct {
		totalDirect += g.Amount
	}

	totalSavings := ibi.TotalSavings + icio.EstimatedSavings
	totalGrants := irpf.EstimatedDeduction + totalDirect
	netCost := req.TotalCost - totalGrants - icio.EstimatedSavings

	return domain.GrantCalculation{
		IRPF:         irpf,
		IBI:          ibi,
		ICIO:         icio,
		DirectGrants: direct,

		TotalSavings: round2(totalSavings),
		TotalGrants:  round2(totalGrants),
		NetCost:      round2(netCost),

		AutonomousCommunity: req.AutonomousCommunity,
		Province:            req.Province,
		Municipality:        req.Municipality,
		CalculatedAt:        now,
	}, nil
}

// calculateIRPF picks the best-fitting percentage tier: the first tier
// whose maximum deductible base is not exceeded by the total cost, else
// the last (highest) tier.
func calculateIRPF(rules []domain.GrantRule, totalCost float64) domain.IRPFResult {
	var tiers []domain.GrantRule
	for _, r := range rules {
		if r.GrantType == domain.GrantIRPF && r.IRPFPercentage > 0 {
			tiers = append(tiers, r)
		}
	}
	if len(tiers) == 0 {
		return domain.IRPFResult{}
	}

	selected := tiers[len(tiers)-1]
	for _, tier := range tiers {
		maxBase := tier.IRPFMaxAmount * 100 / tier.IRPFPercentage
		if totalCost <= maxBase {
			selected = tier
			break
		}
	}

	maxBase := selected.IRPFMaxAmount * 100 / selected.IRPFPercentage
	base := math.Min(totalCost, maxBase)
	deduction := base * selected.IRPFPercentage / 100

	return domain.IRPFResult{
		Applicable:         true,
		Percentage:         selected.IRPFPercentage,
		MaxAmount:          selected.IRPFMaxAmount,
		MaxBase:            round2(maxBase),
		EstimatedDeduction: round2(deduction),
	}
}

func calculateIBI(rules []domain.GrantRule, currentAnnualIBI float64) domain.IBIResult {
	for _, r := range rules {
		if r.GrantType != domain.GrantIBI || r.IBIPercentage <= 0 {
			continue
		}
		annual := currentAnnualIBI * r.IBIPercentage / 100
		return domain.IBIResult{
			Applicable:    true,
			Percentage:    r.IBIPercentage,
			DurationYears: r.IBIDurationYears,
			AnnualSavings: round2(annual),
			TotalSavings:  round2(annual * float64(r.IBIDurationYears)),
		}
	}
	return domain.IBIResult{}
}

func calculateICIO(rules []domain.GrantRule, totalCost float64) domain.ICIOResult {
	for _, r := range rules {
		if r.GrantType != domain.GrantICIO || r.ICIOPercentage <= 0 {
			continue
		}
		base := totalCost * icioBaseShare
		return domain.ICIOResult{
			Applicable:       true,
			Percentage:       r.ICIOPercentage,
			EstimatedSavings: round2(base * r.ICIOPercentage / 100),
		}
	}
	return domain.ICIOResult{}
}

func collectDirectGrants(rules []domain.GrantRule) []domain.DirectGrant {
	grants := make([]domain.DirectGrant, 0)
	for _, r := range rules {
		if r.GrantType != domain.GrantDirect {
			continue
		}
		grants = append(grants, domain.DirectGrant{
			Type:                    string(r.GrantType),
			Amount:                  r.DirectGrantAmount,
			Percentage:              r.DirectGrantPercentage,
			Description:             r.Description,
			RequiresPreRegistration: r.RequiresPreRegistration,
		})
	}
	return grants
}

func degradedResult(req domain.CalculationRequest, reason string, now time.Time) domain.GrantCalculation {
	return domain.GrantCalculation{
		DirectGrants:        []domain.DirectGrant{},
		NetCost:             round2(req.TotalCost),
		AutonomousCommunity: req.AutonomousCommunity,
		Province:            req.Province,
		Municipality:        req.Municipality,
		Degraded:            true,
		DegradedReason:      reason,
		CalculatedAt:        now,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
