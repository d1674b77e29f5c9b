package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	timeentrydomain "github.com/helioscrm/helios/internal/timeentry/domain"
	"github.com/helioscrm/helios/pkg/db/pagination"
)

func (s *Server) ClockIn(c *gin.Context) {
	var req timeentrydomain.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.ClockIn(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ClockOut(c *gin.Context) {
	var req timeentrydomain.ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.ClockOut(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetActiveTimeEntry(c *gin.Context) {
	resp, err := s.timeEntrySvc.Active(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTimeEntries(c *gin.Context) {
	var query struct {
		pagination.Pagination
		UserID    string `form:"user_id"`
		ProjectID string `form:"project_id"`
		From      string `form:"from"`
		To        string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, ok := parseOptionalID(query.UserID)
	if !ok {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user_id"))
		return
	}
	projectID, ok := parseOptionalID(query.ProjectID)
	if !ok {
		AbortWithError(c, newValidationError("project_id", "invalid_project_id", "invalid project_id"))
		return
	}
	from, ok := parseOptionalDate(query.From)
	if !ok {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from date"))
		return
	}
	to, ok := parseOptionalDate(query.To)
	if !ok {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to date"))
		return
	}
	if !to.IsZero() {
		// An inclusive day range: "to" covers the whole day it names.
		to = to.AddDate(0, 0, 1)
	}

	resp, err := s.timeEntrySvc.List(c.Request.Context(), timeentrydomain.ListEntriesRequest{
		UserID:     userID,
		ProjectID:  projectID,
		From:       from,
		To:         to,
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
