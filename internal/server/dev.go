package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/helioscrm/helios/internal/apikey/domain"
	orgdomain "github.com/helioscrm/helios/internal/organization/domain"
)

// BootstrapAPIKey issues a key for the seeded default organization. A
// fresh install has no key to authenticate its first request with, so
// this endpoint is wired only outside production.
func (s *Server) BootstrapAPIKey(c *gin.Context) {
	var org orgdomain.Organization
	if err := s.db.WithContext(c.Request.Context()).
		Where("slug = ?", "main").
		First(&org).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.apiKeySvc.Issue(c.Request.Context(), apikeydomain.IssueKeyRequest{
		OrgID: org.ID,
		Name:  "bootstrap",
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
