package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectCustomer    = "customer"
	ObjectLead        = "lead"
	ObjectProject     = "project"
	ObjectSubsidy     = "subsidy"
	ObjectDocument    = "document"
	ObjectTicket      = "ticket"
	ObjectTimeEntry   = "time_entry"
	ObjectAPIKey      = "api_key"
	ObjectCalculator  = "calculator"
	ObjectGrantRule   = "grant_rule"
	ObjectOrgSettings = "org_settings"
)

const (
	ActionCustomerView   = "customer.view"
	ActionCustomerCreate = "customer.create"
	ActionCustomerUpdate = "customer.update"
	ActionCustomerDelete = "customer.delete"

	ActionLeadView    = "lead.view"
	ActionLeadCreate  = "lead.create"
	ActionLeadMove    = "lead.move"
	ActionLeadConvert = "lead.convert"
	ActionLeadDelete  = "lead.delete"

	ActionProjectView       = "project.view"
	ActionProjectCreate     = "project.create"
	ActionProjectUpdate     = "project.update"
	ActionProjectTransition = "project.transition"
	ActionProjectDelete     = "project.delete"

	ActionSubsidyView       = "subsidy.view"
	ActionSubsidyCreate     = "subsidy.create"
	ActionSubsidyTransition = "subsidy.transition"
	ActionSubsidyDelete     = "subsidy.delete"

	ActionDocumentView     = "document.view"
	ActionDocumentGenerate = "document.generate"

	ActionTicketView   = "ticket.view"
	ActionTicketCreate = "ticket.create"
	ActionTicketUpdate = "ticket.update"

	ActionTimeEntryView  = "time_entry.view"
	ActionTimeEntryClock = "time_entry.clock"

	ActionAPIKeyView   = "api_key.view"
	ActionAPIKeyCreate = "api_key.create"
	ActionAPIKeyRevoke = "api_key.revoke"

	ActionCalculatorRun = "calculator.run"

	ActionGrantRuleView   = "grant_rule.view"
	ActionGrantRuleManage = "grant_rule.manage"

	ActionOrgSettingsManage = "org_settings.manage"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, orgID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return ErrInvalidOrganization
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, orgID)
	if err != nil {
		return err
	}

	domain := fmt.Sprintf("org:%s", orgID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Warn("authorization denied",
			zap.String("actor", actor),
			zap.String("org_id", orgID),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, orgID string) (string, string, error) {
	if actor == "system" {
		return actor, "role:system", nil
	}
	if strings.HasPrefix(actor, "api_key:") {
		// API keys act with the full system role; scope narrowing
		// happens at the transport layer.
		raw := strings.TrimPrefix(actor, "api_key:")
		keyID, err := snowflake.ParseString(raw)
		if err != nil || keyID == 0 {
			return "", "", ErrInvalidActor
		}
		return actor, "role:system", nil
	}
	if strings.HasPrefix(actor, "user:") {
		raw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(raw)
		if err != nil || userID == 0 {
			return "", "", ErrInvalidActor
		}
		parsedOrgID, err := snowflake.ParseString(orgID)
		if err != nil || parsedOrgID == 0 {
			return "", "", ErrInvalidOrganization
		}
		role, err := s.roleForUser(ctx, parsedOrgID, userID)
		if err != nil {
			return "", "", err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
	}
	return "", "", ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, orgID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM organization_members
		 WHERE org_id = ? AND user_id = ?
		 LIMIT 1`,
		orgID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Sales reps work leads and customers and quote installations.
		{"role:sales", ObjectCustomer, ActionCustomerView},
		{"role:sales", ObjectCustomer, ActionCustomerCreate},
		{"role:sales", ObjectCustomer, ActionCustomerUpdate},
		{"role:sales", ObjectLead, ActionLeadView},
		{"role:sales", ObjectLead, ActionLeadCreate},
		{"role:sales", ObjectLead, ActionLeadMove},
		{"role:sales", ObjectLead, ActionLeadConvert},
		{"role:sales", ObjectProject, ActionProjectView},
		{"role:sales", ObjectCalculator, ActionCalculatorRun},
		{"role:sales", ObjectGrantRule, ActionGrantRuleView},
		{"role:sales", ObjectDocument, ActionDocumentView},
		{"role:sales", ObjectDocument, ActionDocumentGenerate},
		{"role:sales", ObjectTimeEntry, ActionTimeEntryClock},

		// Installers see their projects and clock time.
		{"role:installer", ObjectProject, ActionProjectView},
		{"role:installer", ObjectTicket, ActionTicketView},
		{"role:installer", ObjectTicket, ActionTicketUpdate},
		{"role:installer", ObjectTimeEntry, ActionTimeEntryView},
		{"role:installer", ObjectTimeEntry, ActionTimeEntryClock},

		// Admins run the back office.
		{"role:admin", ObjectCustomer, ActionCustomerView},
		{"role:admin", ObjectCustomer, ActionCustomerCreate},
		{"role:admin", ObjectCustomer, ActionCustomerUpdate},
		{"role:admin", ObjectCustomer, ActionCustomerDelete},
		{"role:admin", ObjectLead, ActionLeadView},
		{"role:admin", ObjectLead, ActionLeadCreate},
		{"role:admin", ObjectLead, ActionLeadMove},
		{"role:admin", ObjectLead, ActionLeadConvert},
		{"role:admin", ObjectLead, ActionLeadDelete},
		{"role:admin", ObjectProject, ActionProjectView},
		{"role:admin", ObjectProject, ActionProjectCreate},
		{"role:admin", ObjectProject, ActionProjectUpdate},
		{"role:admin", ObjectProject, ActionProjectTransition},
		{"role:admin", ObjectProject, ActionProjectDelete},
		{"role:admin", ObjectSubsidy, ActionSubsidyView},
		{"role:admin", ObjectSubsidy, ActionSubsidyCreate},
		{"role:admin", ObjectSubsidy, ActionSubsidyTransition},
		{"role:admin", ObjectSubsidy, ActionSubsidyDelete},
		{"role:admin", ObjectDocument, ActionDocumentView},
		{"role:admin", ObjectDocument, ActionDocumentGenerate},
		{"role:admin", ObjectTicket, ActionTicketView},
		{"role:admin", ObjectTicket, ActionTicketCreate},
		{"role:admin", ObjectTicket, ActionTicketUpdate},
		{"role:admin", ObjectTimeEntry, ActionTimeEntryView},
		{"role:admin", ObjectTimeEntry, ActionTimeEntryClock},
		{"role:admin", ObjectCalculator, ActionCalculatorRun},
		{"role:admin", ObjectGrantRule, ActionGrantRuleView},
		{"role:admin", ObjectAPIKey, ActionAPIKeyView},
		{"role:admin", ObjectAPIKey, ActionAPIKeyCreate},

		// Owners hold the admin set plus key, grant rule and org management.
		{"role:owner", ObjectCustomer, ActionCustomerView},
		{"role:owner", ObjectCustomer, ActionCustomerCreate},
		{"role:owner", ObjectCustomer, ActionCustomerUpdate},
		{"role:owner", ObjectCustomer, ActionCustomerDelete},
		{"role:owner", ObjectLead, ActionLeadView},
		{"role:owner", ObjectLead, ActionLeadCreate},
		{"role:owner", ObjectLead, ActionLeadMove},
		{"role:owner", ObjectLead, ActionLeadConvert},
		{"role:owner", ObjectLead, ActionLeadDelete},
		{"role:owner", ObjectProject, ActionProjectView},
		{"role:owner", ObjectProject, ActionProjectCreate},
		{"role:owner", ObjectProject, ActionProjectUpdate},
		{"role:owner", ObjectProject, ActionProjectTransition},
		{"role:owner", ObjectProject, ActionProjectDelete},
		{"role:owner", ObjectSubsidy, ActionSubsidyView},
		{"role:owner", ObjectSubsidy, ActionSubsidyCreate},
		{"role:owner", ObjectSubsidy, ActionSubsidyTransition},
		{"role:owner", ObjectSubsidy, ActionSubsidyDelete},
		{"role:owner", ObjectDocument, ActionDocumentView},
		{"role:owner", ObjectDocument, ActionDocumentGenerate},
		{"role:owner", ObjectTicket, ActionTicketView},
		{"role:owner", ObjectTicket, ActionTicketCreate},
		{"role:owner", ObjectTicket, ActionTicketUpdate},
		{"role:owner", ObjectTimeEntry, ActionTimeEntryView},
		{"role:owner", ObjectTimeEntry, ActionTimeEntryClock},
		{"role:owner", ObjectCalculator, ActionCalculatorRun},
		{"role:owner", ObjectAPIKey, ActionAPIKeyView},
		{"role:owner", ObjectAPIKey, ActionAPIKeyCreate},
		{"role:owner", ObjectAPIKey, ActionAPIKeyRevoke},
		{"role:owner", ObjectGrantRule, ActionGrantRuleView},
		{"role:owner", ObjectGrantRule, ActionGrantRuleManage},
		{"role:owner", ObjectOrgSettings, ActionOrgSettingsManage},

		// System role covers automation and API keys.
		{"role:system", ObjectCustomer, ActionCustomerView},
		{"role:system", ObjectCustomer, ActionCustomerCreate},
		{"role:system", ObjectCustomer, ActionCustomerUpdate},
		{"role:system", ObjectCustomer, ActionCustomerDelete},
		{"role:system", ObjectLead, ActionLeadView},
		{"role:system", ObjectLead, ActionLeadCreate},
		{"role:system", ObjectLead, ActionLeadMove},
		{"role:system", ObjectLead, ActionLeadConvert},
		{"role:system", ObjectLead, ActionLeadDelete},
		{"role:system", ObjectProject, ActionProjectView},
		{"role:system", ObjectProject, ActionProjectCreate},
		{"role:system", ObjectProject, ActionProjectUpdate},
		{"role:system", ObjectProject, ActionProjectTransition},
		{"role:system", ObjectProject, ActionProjectDelete},
		{"role:system", ObjectSubsidy, ActionSubsidyView},
		{"role:system", ObjectSubsidy, ActionSubsidyCreate},
		{"role:system", ObjectSubsidy, ActionSubsidyTransition},
		{"role:system", ObjectSubsidy, ActionSubsidyDelete},
		{"role:system", ObjectDocument, ActionDocumentView},
		{"role:system", ObjectDocument, ActionDocumentGenerate},
		{"role:system", ObjectTicket, ActionTicketView},
		{"role:system", ObjectTicket, ActionTicketCreate},
		{"role:system", ObjectTicket, ActionTicketUpdate},
		{"role:system", ObjectTimeEntry, ActionTimeEntryView},
		{"role:system", ObjectTimeEntry, ActionTimeEntryClock},
		{"role:system", ObjectCalculator, ActionCalculatorRun},
		{"role:system", ObjectGrantRule, ActionGrantRuleView},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
