package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateOrganizationRequest struct {
	Name             string           `json:"name"`
	SubscriptionPlan SubscriptionPlan `json:"subscription_plan,omitempty"`
	SupportEmail     string           `json:"support_email,omitempty"`
	CountryCode      string           `json:"country_code,omitempty"`
}

type UpdatePlanRequest struct {
	OrgID snowflake.ID
	Plan  SubscriptionPlan
}

type Service interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (Organization, error)
	GetByID(ctx context.Context, id snowflake.ID) (Organization, error)
	UpdatePlan(ctx context.Context, req UpdatePlanRequest) (Organization, error)
	// EntitledToCalculator resolves the business-tier gate for the org.
	EntitledToCalculator(ctx context.Context, id snowflake.ID) (bool, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidPlan = errors.New("invalid_plan")
	ErrNotFound    = errors.New("not_found")
)
