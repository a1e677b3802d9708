package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListSubmissionsForReview(c *gin.Context) {
	status := submissiondomain.Status(strings.TrimSpace(c.DefaultQuery("status", string(submissiondomain.StatusPending))))
	if !status.Valid() {
		AbortWithError(c, submissiondomain.ErrInvalidStatus)
		return
	}

	items, err := s.submissionSvc.ListByStatus(c.Request.Context(), status, 100)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (s *Server) TransitionSubmission(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.submissionSvc.Transition(c.Request.Context(), id, submissiondomain.Status(strings.TrimSpace(req.Status)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
