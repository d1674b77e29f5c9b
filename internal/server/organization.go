package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orgdomain "github.com/helioscrm/helios/internal/organization/domain"
	"github.com/helioscrm/helios/internal/orgcontext"
)

func (s *Server) GetOrganization(c *gin.Context) {
	orgID := orgcontext.OrgIDFromContext(c.Request.Context())
	if orgID == 0 {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.organizationSvc.GetByID(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updatePlanRequest struct {
	Plan orgdomain.SubscriptionPlan `json:"plan"`
}

func (s *Server) UpdateOrganizationPlan(c *gin.Context) {
	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID := orgcontext.OrgIDFromContext(c.Request.Context())
	if orgID == 0 {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.organizationSvc.UpdatePlan(c.Request.Context(), orgdomain.UpdatePlanRequest{
		OrgID: orgID,
		Plan:  req.Plan,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
