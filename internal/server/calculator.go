package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	grantsdomain "github.com/helioscrm/helios/internal/grants/domain"
	solardomain "github.com/helioscrm/helios/internal/solar/domain"
)

func (s *Server) CalculateSolar(c *gin.Context) {
	var req solardomain.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.solarSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CalculateGrants(c *gin.Context) {
	var req grantsdomain.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.grantsSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
