package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	grantsdomain "github.com/helioscrm/helios/internal/grants/domain"
	projectdomain "github.com/helioscrm/helios/internal/project/domain"
	"github.com/helioscrm/helios/pkg/db/pagination"
	"gorm.io/datatypes"
)

func (s *Server) CreateProject(c *gin.Context) {
	var req projectdomain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.projectSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProjects(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := projectdomain.Status(strings.TrimSpace(query.Status))
	if status != "" && !status.Valid() {
		AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
		return
	}

	customerID, ok := parseOptionalID(query.CustomerID)
	if !ok {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
		return
	}

	resp, err := s.projectSvc.List(c.Request.Context(), projectdomain.ListProjectsRequest{
		Status:     status,
		CustomerID: customerID,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProjectByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.projectSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateProjectStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req projectdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AttachProjectCalculation(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req projectdomain.AttachCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.AttachCalculation(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type refreshProjectGrantsRequest struct {
	AutonomousCommunity string  `json:"autonomousCommunity"`
	Province            string  `json:"province,omitempty"`
	Municipality        string  `json:"municipality,omitempty"`
	CurrentAnnualIBI    float64 `json:"currentAnnualIbi,omitempty"`
}

// RefreshProjectGrants recomputes the incentives for the project's stored
// sizing and persists the result next to the calculation snapshot.
func (s *Server) RefreshProjectGrants(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req refreshProjectGrantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	project, err := s.projectSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	grants, err := s.grantsSvc.Calculate(c.Request.Context(), grantsdomain.CalculationRequest{
		AutonomousCommunity: strings.TrimSpace(req.AutonomousCommunity),
		Province:            strings.TrimSpace(req.Province),
		Municipality:        strings.TrimSpace(req.Municipality),
		SystemSizeKwp:       project.SystemSizeKwp,
		TotalCost:           project.TotalCost,
		CurrentAnnualIBI:    req.CurrentAnnualIBI,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	grantsMap, err := toJSONMap(grants)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.projectSvc.AttachCalculation(c.Request.Context(), id, projectdomain.AttachCalculationRequest{
		Calculation: project.Calculation,
		Grants:      grantsMap,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProject(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.projectSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func toJSONMap(v any) (datatypes.JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := datatypes.JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
