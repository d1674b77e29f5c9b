package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/helioscrm/helios/internal/apikey/domain"
	"github.com/helioscrm/helios/internal/orgcontext"
)

type createAPIKeyRequest struct {
	Name   string   `json:"name"`
	Scopes []string `json:"scopes,omitempty"`
}

// CreateAPIKey issues a key for the authenticated organization. The org
// always comes from context so a key can never mint keys for another
// tenant.
func (s *Server) CreateAPIKey(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID := orgcontext.OrgIDFromContext(c.Request.Context())
	if orgID == 0 {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.apiKeySvc.Issue(c.Request.Context(), apikeydomain.IssueKeyRequest{
		OrgID:  orgID,
		Name:   strings.TrimSpace(req.Name),
		Scopes: req.Scopes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevokeAPIKey(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.apiKeySvc.Revoke(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"revoked": true}})
}
