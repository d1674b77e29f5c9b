package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	customerdomain "github.com/helioscrm/helios/internal/customer/domain"
	"github.com/helioscrm/helios/internal/document/domain"
	"github.com/helioscrm/helios/internal/orgcontext"
	orgdomain "github.com/helioscrm/helios/internal/organization/domain"
	projectdomain "github.com/helioscrm/helios/internal/project/domain"
	"github.com/helioscrm/helios/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultShareValidDays = 30

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Projects  projectdomain.Service
	Customers customerdomain.Service
	Orgs      orgdomain.Service
	PDF       pdf.Provider
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	projects  projectdomain.Service
	customers customerdomain.Service
	orgs      orgdomain.Service
	pdf       pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("document.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		projects:  p.Projects,
		customers: p.Customers,
		orgs:      p.Orgs,
		pdf:       p.PDF,
	}
}

func (s *Service) GenerateQuote(ctx context.Context, req domain.GenerateQuoteRequest) (domain.Document, error) {
	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, projectdomain.ErrNotFound) {
			return domain.Document{}, domain.ErrInvalidProject
		}
		return domain.Document{}, err
	}

	customer, err := s.customers.GetByID(ctx, project.CustomerID)
	if err != nil {
		return domain.Document{}, err
	}

	org, err := s.orgs.GetByID(ctx, orgcontext.OrgIDFromContext(ctx))
	if err != nil {
		return domain.Document{}, err
	}

	doc := s.genID.Generate()
	now := time.Now().UTC()

	validDays := req.ValidDays
	if validDays <= 0 {
		validDays = defaultShareValidDays
	}
	expiresAt := now.AddDate(0, 0, validDays)

	data := buildQuoteData(org, customer, project, doc, now, expiresAt)

	reader, err := s.pdf.GenerateQuote(ctx, data)
	if err != nil {
		return domain.Document{}, err
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return domain.Document{}, err
	}

	document := domain.Document{
		ID:          doc,
		OrgID:       org.ID,
		ProjectID:   project.ID,
		Kind:        domain.KindQuote,
		Filename:    fmt.Sprintf("quote-%s.pdf", doc.String()),
		ContentType: "application/pdf",
		Content:     content,
		ShareToken:  uuid.NewString(),
		ExpiresAt:   &expiresAt,
		CreatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &document); err != nil {
		return domain.Document{}, err
	}

	s.log.Info("quote generated",
		zap.String("document_id", document.ID.String()),
		zap.String("project_id", project.ID.String()),
	)

	return document, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Document, error) {
	doc, err := s.repo.FindByID(ctx, s.db, orgcontext.OrgIDFromContext(ctx), id)
	if err != nil {
		return domain.Document{}, err
	}
	if doc == nil {
		return domain.Document{}, domain.ErrNotFound
	}
	return *doc, nil
}

func (s *Service) GetByShareToken(ctx context.Context, token string) (domain.Document, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Document{}, domain.ErrNotFound
	}

	doc, err := s.repo.FindByShareToken(ctx, s.db, token)
	if err != nil {
		return domain.Document{}, err
	}
	if doc == nil {
		return domain.Document{}, domain.ErrNotFound
	}
	if doc.Expired(time.Now().UTC()) {
		return domain.Document{}, domain.ErrLinkExpired
	}
	return *doc, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID snowflake.ID) ([]domain.Document, error) {
	return s.repo.FindByProject(ctx, s.db, orgcontext.OrgIDFromContext(ctx), projectID)
}

func buildQuoteData(org orgdomain.Organization, customer customerdomain.Customer, project projectdomain.Project, docID snowflake.ID, now, expiresAt time.Time) pdf.QuoteData {
	data := pdf.QuoteData{
		OrgName:       org.Name,
		OrgEmail:      org.SupportEmail,
		QuoteNumber:   docID.String(),
		IssueDate:     now.Format("2006-01-02"),
		ValidUntil:    expiresAt.Format("2006-01-02"),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerAddress: strings.TrimSpace(strings.Join([]string{
			customer.Address, customer.PostalCode, customer.City,
		}, " ")),
		SystemSizeKwp: fmt.Sprintf("%.1f", project.SystemSizeKwp),
		PanelCount:    project.PanelCount,
		TotalCost:     formatEUR(project.TotalCost),
		Lines: []pdf.QuoteLine{
			{
				Description: fmt.Sprintf("Photovoltaic installation, %.1f kWp", project.SystemSizeKwp),
				Qty:         1,
				UnitPrice:   formatEUR(project.TotalCost),
				Amount:      formatEUR(project.TotalCost),
			},
		},
	}

	if v, ok := project.Calculation["production"].(float64); ok {
		data.AnnualProduction = fmt.Sprintf("%.0f", v)
	}
	if v, ok := project.Calculation["dataSource"].(string); ok {
		data.DataSource = v
	}
	if v, ok := project.Calculation["savings"].(float64); ok {
		data.AnnualSavings = formatEUR(v)
	}
	if v, ok := project.Grants["total_grants"].(float64); ok {
		data.GrantsTotal = formatEUR(v)
	}
	if v, ok := project.Grants["net_cost"].(float64); ok {
		data.NetCost = formatEUR(v)
	} else {
		data.NetCost = formatEUR(project.TotalCost)
	}

	return data
}

func formatEUR(v float64) string {
	return fmt.Sprintf("%.2f EUR", v)
}
