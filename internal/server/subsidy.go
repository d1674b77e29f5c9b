package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	subsidydomain "github.com/helioscrm/helios/internal/subsidy/domain"
	"github.com/helioscrm/helios/pkg/db/pagination"
)

func (s *Server) CreateSubsidyApplication(c *gin.Context) {
	var req subsidydomain.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Program = strings.TrimSpace(req.Program)

	resp, err := s.subsidySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubsidyApplications(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ProjectID string `form:"project_id"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	status := subsidydomain.ApplicationStatus(strings.TrimSpace(query.Status))
	if status != "" && !status.Valid() {
		AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
		return
	}

	projectID, ok := parseOptionalID(query.ProjectID)
	if !ok {
		AbortWithError(c, newValidationError("project_id", "invalid_project_id", "invalid project_id"))
		return
	}

	resp, err := s.subsidySvc.List(c.Request.Context(), subsidydomain.ListApplicationsRequest{
		ProjectID:  projectID,
		Status:     status,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSubsidyApplicationByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.subsidySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SubmitSubsidyApplication(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Reference string `json:"reference,omitempty"`
		Notes     string `json:"notes,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.subsidySvc.Transition(c.Request.Context(), id, subsidydomain.TransitionRequest{
		Status:    subsidydomain.StatusSubmitted,
		Reference: strings.TrimSpace(req.Reference),
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// DecideSubsidyApplication resolves a submitted application. Only the
// approved and rejected outcomes are reachable here; the paid stamp has
// its own endpoint.
func (s *Server) DecideSubsidyApplication(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req subsidydomain.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.Status != subsidydomain.StatusApproved && req.Status != subsidydomain.StatusRejected {
		AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
		return
	}

	resp, err := s.subsidySvc.Transition(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkSubsidyApplicationPaid(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.subsidySvc.Transition(c.Request.Context(), id, subsidydomain.TransitionRequest{
		Status: subsidydomain.StatusPaid,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSubsidyApplication(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.subsidySvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
