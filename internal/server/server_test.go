package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	apikeydomain "github.com/helioscrm/helios/internal/apikey/domain"
	"github.com/helioscrm/helios/internal/authorization"
	documentdomain "github.com/helioscrm/helios/internal/document/domain"
	grantsdomain "github.com/helioscrm/helios/internal/grants/domain"
	orgdomain "github.com/helioscrm/helios/internal/organization/domain"
	solardomain "github.com/helioscrm/helios/internal/solar/domain"
)

type fakeAPIKeyService struct {
	key apikeydomain.APIKey
}

func (f *fakeAPIKeyService) Issue(ctx context.Context, req apikeydomain.IssueKeyRequest) (apikeydomain.IssueKeyResponse, error) {
	_ = ctx
	_ = req
	return apikeydomain.IssueKeyResponse{}, nil
}

func (f *fakeAPIKeyService) Resolve(ctx context.Context, raw string) (apikeydomain.APIKey, error) {
	_ = ctx
	if raw != "hel_valid" {
		return apikeydomain.APIKey{}, apikeydomain.ErrInvalidKey
	}
	return f.key, nil
}

func (f *fakeAPIKeyService) Revoke(ctx context.Context, id snowflake.ID) error {
	_ = ctx
	_ = id
	return nil
}

type fakeAuthzService struct {
	calls int
}

func (f *fakeAuthzService) Authorize(ctx context.Context, actor, orgID, object, action string) error {
	f.calls++
	_ = ctx
	_ = actor
	_ = orgID
	_ = object
	_ = action
	return nil
}

type fakeOrgService struct {
	entitled bool
}

func (f *fakeOrgService) Create(ctx context.Context, req orgdomain.CreateOrganizationRequest) (orgdomain.Organization, error) {
	_ = ctx
	_ = req
	return orgdomain.Organization{}, nil
}

func (f *fakeOrgService) GetByID(ctx context.Context, id snowflake.ID) (orgdomain.Organization, error) {
	_ = ctx
	_ = id
	return orgdomain.Organization{}, nil
}

func (f *fakeOrgService) UpdatePlan(ctx context.Context, req orgdomain.UpdatePlanRequest) (orgdomain.Organization, error) {
	_ = ctx
	_ = req
	return orgdomain.Organization{}, nil
}

func (f *fakeOrgService) EntitledToCalculator(ctx context.Context, id snowflake.ID) (bool, error) {
	_ = ctx
	_ = id
	return f.entitled, nil
}

type fakeSolarService struct {
	calls int
	err   error
}

func (f *fakeSolarService) Calculate(ctx context.Context, req solardomain.CalculationRequest) (solardomain.CalculationResult, error) {
	f.calls++
	_ = ctx
	if err := req.Validate(); err != nil {
		return solardomain.CalculationResult{}, err
	}
	if f.err != nil {
		return solardomain.CalculationResult{}, f.err
	}
	return solardomain.CalculationResult{
		SystemSize: 2.5,
		Panels:     5,
		Production: 4000,
		DataSource: solardomain.SourcePVGIS,
	}, nil
}

type fakeGrantsService struct{}

func (f *fakeGrantsService) Calculate(ctx context.Context, req grantsdomain.CalculationRequest) (grantsdomain.GrantCalculation, error) {
	_ = ctx
	if err := req.Validate(); err != nil {
		return grantsdomain.GrantCalculation{}, err
	}
	return grantsdomain.GrantCalculation{TotalGrants: 1000}, nil
}

type fakeDocumentService struct {
	doc documentdomain.Document
	err error
}

func (f *fakeDocumentService) GenerateQuote(ctx context.Context, req documentdomain.GenerateQuoteRequest) (documentdomain.Document, error) {
	_ = ctx
	_ = req
	return f.doc, f.err
}

func (f *fakeDocumentService) GetByID(ctx context.Context, id snowflake.ID) (documentdomain.Document, error) {
	_ = ctx
	_ = id
	return f.doc, f.err
}

func (f *fakeDocumentService) GetByShareToken(ctx context.Context, token string) (documentdomain.Document, error) {
	_ = ctx
	_ = token
	return f.doc, f.err
}

func (f *fakeDocumentService) ListByProject(ctx context.Context, projectID snowflake.ID) ([]documentdomain.Document, error) {
	_ = ctx
	_ = projectID
	return nil, nil
}

func newCalculatorRouter(srv *Server) *gin.Engine {
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/solar/calculate",
		srv.APIKeyRequired(),
		srv.authorizeOrgAction(authorization.ObjectCalculator, authorization.ActionCalculatorRun),
		srv.CalculatorEntitlementRequired(),
		srv.CalculatorRateLimit(),
		srv.CalculateSolar,
	)
	return router
}

func validCalculateBody() *bytes.Buffer {
	return bytes.NewBufferString(`{
		"consumption": 4000,
		"installationType": "residential",
		"location": {"lat": 40.4, "lng": -3.7},
		"roofOrientation": "south",
		"roofTilt": 30
	}`)
}

func decodeErrorType(t *testing.T, body *bytes.Buffer) string {
	t.Helper()
	var payload struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	return payload.Error.Type
}

func TestCalculateSolarRequiresAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	solarSvc := &fakeSolarService{}
	srv := &Server{
		apiKeySvc: &fakeAPIKeyService{},
		solarSvc:  solarSvc,
	}
	router := newCalculatorRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/solar/calculate", validCalculateBody())
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if solarSvc.calls != 0 {
		t.Fatal("expected calculator not to run without a key")
	}
}

func TestCalculateSolarRejectsCallerOrgID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		apiKeySvc: &fakeAPIKeyService{key: apikeydomain.APIKey{ID: 1, OrgID: 42}},
		solarSvc:  &fakeSolarService{},
	}
	router := newCalculatorRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/solar/calculate", validCalculateBody())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer hel_valid")
	req.Header.Set(HeaderOrg, "7")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestCalculateSolarUpgradeRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	solarSvc := &fakeSolarService{}
	srv := &Server{
		apiKeySvc:       &fakeAPIKeyService{key: apikeydomain.APIKey{ID: 1, OrgID: 42}},
		authzSvc:        &fakeAuthzService{},
		organizationSvc: &fakeOrgService{entitled: false},
		solarSvc:        solarSvc,
	}
	router := newCalculatorRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/solar/calculate", validCalculateBody())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer hel_valid")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
	if got := decodeErrorType(t, resp.Body); got != "upgrade_required" {
		t.Fatalf("expected error type upgrade_required, got %q", got)
	}
	if solarSvc.calls != 0 {
		t.Fatal("expected calculator not to run without entitlement")
	}
}

func TestCalculateSolarRunsPipeline(t *testing.T) {
	gin.SetMode(gin.TestMode)

	solarSvc := &fakeSolarService{}
	authzSvc := &fakeAuthzService{}
	srv := &Server{
		apiKeySvc:       &fakeAPIKeyService{key: apikeydomain.APIKey{ID: 1, OrgID: 42}},
		authzSvc:        authzSvc,
		organizationSvc: &fakeOrgService{entitled: true},
		solarSvc:        solarSvc,
	}
	router := newCalculatorRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/solar/calculate", validCalculateBody())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer hel_valid")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if solarSvc.calls != 1 {
		t.Fatalf("expected one calculator run, got %d", solarSvc.calls)
	}
	if authzSvc.calls != 1 {
		t.Fatalf("expected one authorization check, got %d", authzSvc.calls)
	}
}

func TestCalculateSolarValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		apiKeySvc:       &fakeAPIKeyService{key: apikeydomain.APIKey{ID: 1, OrgID: 42}},
		authzSvc:        &fakeAuthzService{},
		organizationSvc: &fakeOrgService{entitled: true},
		solarSvc:        &fakeSolarService{},
	}
	router := newCalculatorRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/solar/calculate", bytes.NewBufferString(`{
		"consumption": -5,
		"installationType": "residential",
		"location": {"lat": 40.4, "lng": -3.7},
		"roofOrientation": "south",
		"roofTilt": 30
	}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer hel_valid")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if got := decodeErrorType(t, resp.Body); got != "validation_error" {
		t.Fatalf("expected error type validation_error, got %q", got)
	}
}

func TestCalculateSolarImplausibleSizingIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		apiKeySvc:       &fakeAPIKeyService{key: apikeydomain.APIKey{ID: 1, OrgID: 42}},
		authzSvc:        &fakeAuthzService{},
		organizationSvc: &fakeOrgService{entitled: true},
		solarSvc:        &fakeSolarService{err: solardomain.ErrImplausibleSizing},
	}
	router := newCalculatorRouter(srv)

	req := httptest.NewRequest(http.MethodPost, "/api/solar/calculate", validCalculateBody())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer hel_valid")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
	if got := decodeErrorType(t, resp.Body); got != "internal_error" {
		t.Fatalf("expected error type internal_error, got %q", got)
	}
}

func TestCalculateGrantsValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		apiKeySvc: &fakeAPIKeyService{key: apikeydomain.APIKey{ID: 1, OrgID: 42}},
		authzSvc:  &fakeAuthzService{},
		grantsSvc: &fakeGrantsService{},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/grants/calculate",
		srv.APIKeyRequired(),
		srv.authorizeOrgAction(authorization.ObjectCalculator, authorization.ActionCalculatorRun),
		srv.CalculateGrants,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/grants/calculate", bytes.NewBufferString(`{
		"systemSizeKwp": 5,
		"totalCost": 8000
	}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer hel_valid")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestPublicQuoteDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		documentSvc: &fakeDocumentService{
			doc: documentdomain.Document{
				Filename:    "quote-1.pdf",
				ContentType: "application/pdf",
				Content:     []byte("%PDF-1.7 fake"),
			},
		},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/public/quotes/:token", srv.DownloadSharedQuote)

	req := httptest.NewRequest(http.MethodGet, "/public/quotes/some-token", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", got)
	}
	if resp.Body.String() != "%PDF-1.7 fake" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestPublicQuoteExpiredLink(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{
		documentSvc: &fakeDocumentService{err: documentdomain.ErrLinkExpired},
	}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/public/quotes/:token", srv.DownloadSharedQuote)

	req := httptest.NewRequest(http.MethodGet, "/public/quotes/stale-token", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusGone {
		t.Fatalf("expected status 410, got %d", resp.Code)
	}
	if got := decodeErrorType(t, resp.Body); got != "link_expired" {
		t.Fatalf("expected error type link_expired, got %q", got)
	}
}

func TestRetryAfterHeaderOnRateLimit(t *testing.T) {
	// RetryAfterSeconds rounding is covered in the ratelimit package; this
	// pins the mapping of ErrTooManyRequests to a 429 payload.
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/limited", func(c *gin.Context) {
		c.Header("Retry-After", "2")
		AbortWithError(c, ErrTooManyRequests)
	})

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", resp.Code)
	}
	if got := resp.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
}
