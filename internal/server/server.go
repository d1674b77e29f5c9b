package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/helioscrm/helios/internal/apikey"
	apikeydomain "github.com/helioscrm/helios/internal/apikey/domain"
	"github.com/helioscrm/helios/internal/authorization"
	"github.com/helioscrm/helios/internal/config"
	"github.com/helioscrm/helios/internal/customer"
	customerdomain "github.com/helioscrm/helios/internal/customer/domain"
	"github.com/helioscrm/helios/internal/document"
	documentdomain "github.com/helioscrm/helios/internal/document/domain"
	"github.com/helioscrm/helios/internal/grants"
	grantsdomain "github.com/helioscrm/helios/internal/grants/domain"
	"github.com/helioscrm/helios/internal/lead"
	leaddomain "github.com/helioscrm/helios/internal/lead/domain"
	"github.com/helioscrm/helios/internal/observability/metrics"
	"github.com/helioscrm/helios/internal/organization"
	orgdomain "github.com/helioscrm/helios/internal/organization/domain"
	"github.com/helioscrm/helios/internal/project"
	projectdomain "github.com/helioscrm/helios/internal/project/domain"
	"github.com/helioscrm/helios/internal/ratelimit"
	"github.com/helioscrm/helios/internal/solar"
	solardomain "github.com/helioscrm/helios/internal/solar/domain"
	"github.com/helioscrm/helios/internal/subsidy"
	subsidydomain "github.com/helioscrm/helios/internal/subsidy/domain"
	"github.com/helioscrm/helios/internal/ticket"
	ticketdomain "github.com/helioscrm/helios/internal/ticket/domain"
	"github.com/helioscrm/helios/internal/timeentry"
	timeentrydomain "github.com/helioscrm/helios/internal/timeentry/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	apikey.Module,
	organization.Module,
	customer.Module,
	lead.Module,
	project.Module,
	subsidy.Module,
	document.Module,
	timeentry.Module,
	ticket.Module,
	solar.Module,
	grants.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(m *metrics.Metrics) *gin.Engine {
	return NewEngine(m)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine            *gin.Engine
	cfg               config.Config
	db                *gorm.DB
	apiKeySvc         apikeydomain.Service
	authzSvc          authorization.Service
	organizationSvc   orgdomain.Service
	customerSvc       customerdomain.Service
	leadSvc           leaddomain.Service
	projectSvc        projectdomain.Service
	subsidySvc        subsidydomain.Service
	documentSvc       documentdomain.Service
	timeEntrySvc      timeentrydomain.Service
	ticketSvc         ticketdomain.Service
	solarSvc          solardomain.Service
	grantsSvc         grantsdomain.Service
	calculatorLimiter *ratelimit.CalculatorLimiter
}

type ServerParams struct {
	fx.In

	Gin               *gin.Engine
	Cfg               config.Config
	DB                *gorm.DB
	APIKeySvc         apikeydomain.Service
	AuthzSvc          authorization.Service
	OrganizationSvc   orgdomain.Service
	CustomerSvc       customerdomain.Service
	LeadSvc           leaddomain.Service
	ProjectSvc        projectdomain.Service
	SubsidySvc        subsidydomain.Service
	DocumentSvc       documentdomain.Service
	TimeEntrySvc      timeentrydomain.Service
	TicketSvc         ticketdomain.Service
	SolarSvc          solardomain.Service
	GrantsSvc         grantsdomain.Service
	CalculatorLimiter *ratelimit.CalculatorLimiter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:            p.Gin,
		cfg:               p.Cfg,
		db:                p.DB,
		apiKeySvc:         p.APIKeySvc,
		authzSvc:          p.AuthzSvc,
		organizationSvc:   p.OrganizationSvc,
		customerSvc:       p.CustomerSvc,
		leadSvc:           p.LeadSvc,
		projectSvc:        p.ProjectSvc,
		subsidySvc:        p.SubsidySvc,
		documentSvc:       p.DocumentSvc,
		timeEntrySvc:      p.TimeEntrySvc,
		ticketSvc:         p.TicketSvc,
		solarSvc:          p.SolarSvc,
		grantsSvc:         p.GrantsSvc,
		calculatorLimiter: p.CalculatorLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.APIKeyRequired())

	// -------- Calculators --------
	api.POST("/solar/calculate",
		s.authorizeOrgAction(authorization.ObjectCalculator, authorization.ActionCalculatorRun),
		s.CalculatorEntitlementRequired(),
		s.CalculatorRateLimit(),
		s.CalculateSolar,
	)
	api.POST("/grants/calculate",
		s.authorizeOrgAction(authorization.ObjectCalculator, authorization.ActionCalculatorRun),
		s.CalculateGrants,
	)

	// -------- Customers --------
	api.GET("/customers", s.authorizeOrgAction(authorization.ObjectCustomer, authorization.ActionCustomerView), s.ListCustomers)
	api.POST("/customers", s.authorizeOrgAction(authorization.ObjectCustomer, authorization.ActionCustomerCreate), s.CreateCustomer)
	api.GET("/customers/:id", s.authorizeOrgAction(authorization.ObjectCustomer, authorization.ActionCustomerView), s.GetCustomerByID)
	api.PATCH("/customers/:id", s.authorizeOrgAction(authorization.ObjectCustomer, authorization.ActionCustomerUpdate), s.UpdateCustomer)
	api.DELETE("/customers/:id", s.authorizeOrgAction(authorization.ObjectCustomer, authorization.ActionCustomerDelete), s.DeleteCustomer)

	// -------- Leads --------
	api.GET("/leads", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionLeadView), s.ListLeads)
	api.POST("/leads", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionLeadCreate), s.CreateLead)
	api.GET("/leads/:id", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionLeadView), s.GetLeadByID)
	api.POST("/leads/:id/move", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionLeadMove), s.MoveLead)
	api.POST("/leads/:id/convert", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionLeadConvert), s.ConvertLead)
	api.DELETE("/leads/:id", s.authorizeOrgAction(authorization.ObjectLead, authorization.ActionLeadDelete), s.DeleteLead)

	// -------- Projects --------
	api.GET("/projects", s.authorizeOrgAction(authorization.ObjectProject, authorization.ActionProjectView), s.ListProjects)
	api.POST("/projects", s.authorizeOrgAction(authorization.ObjectProject, authorization.ActionProjectCreate), s.CreateProject)
	api.GET("/projects/:id", s.authorizeOrgAction(authorization.ObjectProject, authorization.ActionProjectView), s.GetProjectByID)
	api.POST("/projects/:id/status", s.authorizeOrgAction(authorization.ObjectProject, authorization.ActionProjectTransition), s.UpdateProjectStatus)
	api.PUT("/projects/:id/calculation", s.authorizeOrgAction(authorization.ObjectProject, authorization.ActionProjectUpdate), s.AttachProjectCalculation)
	api.POST("/projects/:id/grants", s.authorizeOrgAction(authorization.ObjectProject, authorization.ActionProjectUpdate), s.RefreshProjectGrants)
	api.GET("/projects/:id/documents", s.authorizeOrgAction(authorization.ObjectDocument, authorization.ActionDocumentView), s.ListProjectDocuments)
	api.DELETE("/projects/:id", s.authorizeOrgAction(authorization.ObjectProject, authorization.ActionProjectDelete), s.DeleteProject)

	// -------- Subsidy applications --------
	api.GET("/subsidies", s.authorizeOrgAction(authorization.ObjectSubsidy, authorization.ActionSubsidyView), s.ListSubsidyApplications)
	api.POST("/subsidies", s.authorizeOrgAction(authorization.ObjectSubsidy, authorization.ActionSubsidyCreate), s.CreateSubsidyApplication)
	api.GET("/subsidies/:id", s.authorizeOrgAction(authorization.ObjectSubsidy, authorization.ActionSubsidyView), s.GetSubsidyApplicationByID)
	api.POST("/subsidies/:id/submit", s.authorizeOrgAction(authorization.ObjectSubsidy, authorization.ActionSubsidyTransition), s.SubmitSubsidyApplication)
	api.POST("/subsidies/:id/decide", s.authorizeOrgAction(authorization.ObjectSubsidy, authorization.ActionSubsidyTransition), s.DecideSubsidyApplication)
	api.POST("/subsidies/:id/pay", s.authorizeOrgAction(authorization.ObjectSubsidy, authorization.ActionSubsidyTransition), s.MarkSubsidyApplicationPaid)
	api.DELETE("/subsidies/:id", s.authorizeOrgAction(authorization.ObjectSubsidy, authorization.ActionSubsidyDelete), s.DeleteSubsidyApplication)

	// -------- Documents --------
	api.POST("/documents", s.authorizeOrgAction(authorization.ObjectDocument, authorization.ActionDocumentGenerate), s.GenerateQuote)
	api.GET("/documents/:id", s.authorizeOrgAction(authorization.ObjectDocument, authorization.ActionDocumentView), s.GetDocumentByID)
	api.GET("/documents/:id/pdf", s.authorizeOrgAction(authorization.ObjectDocument, authorization.ActionDocumentView), s.DownloadDocumentPDF)

	// -------- Time entries --------
	api.POST("/time-entries/clock-in", s.authorizeOrgAction(authorization.ObjectTimeEntry, authorization.ActionTimeEntryClock), s.ClockIn)
	api.POST("/time-entries/clock-out", s.authorizeOrgAction(authorization.ObjectTimeEntry, authorization.ActionTimeEntryClock), s.ClockOut)
	api.GET("/time-entries/active", s.authorizeOrgAction(authorization.ObjectTimeEntry, authorization.ActionTimeEntryClock), s.GetActiveTimeEntry)
	api.GET("/time-entries", s.authorizeOrgAction(authorization.ObjectTimeEntry, authorization.ActionTimeEntryView), s.ListTimeEntries)

	// -------- Tickets --------
	api.GET("/tickets", s.authorizeOrgAction(authorization.ObjectTicket, authorization.ActionTicketView), s.ListTickets)
	api.POST("/tickets", s.authorizeOrgAction(authorization.ObjectTicket, authorization.ActionTicketCreate), s.CreateTicket)
	api.GET("/tickets/:id", s.authorizeOrgAction(authorization.ObjectTicket, authorization.ActionTicketView), s.GetTicketByID)
	api.PATCH("/tickets/:id", s.authorizeOrgAction(authorization.ObjectTicket, authorization.ActionTicketUpdate), s.UpdateTicket)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.APIKeyRequired())

	admin.GET("/organization", s.GetOrganization)
	admin.POST("/organization/plan", s.authorizeOrgAction(authorization.ObjectOrgSettings, authorization.ActionOrgSettingsManage), s.UpdateOrganizationPlan)

	admin.POST("/api-keys", s.authorizeOrgAction(authorization.ObjectAPIKey, authorization.ActionAPIKeyCreate), s.CreateAPIKey)
	admin.POST("/api-keys/:id/revoke", s.authorizeOrgAction(authorization.ObjectAPIKey, authorization.ActionAPIKeyRevoke), s.RevokeAPIKey)

	if s.cfg.Environment != "production" {
		s.engine.POST("/dev/bootstrap", s.BootstrapAPIKey)
	}
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public")
	public.GET("/quotes/:token", s.DownloadSharedQuote)
}
