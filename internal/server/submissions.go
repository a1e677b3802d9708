package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/admission"
	"github.com/deckforge/deckforge/internal/hierarchy"
	"github.com/gin-gonic/gin"
)

type createSubmissionRequest struct {
	SubmissionType string         `json:"submission_type"`
	Title          string         `json:"title"`
	Metadata       map[string]any `json:"metadata"`
}

func (s *Server) CreateSubmission(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrAuthRequired)
		return
	}

	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.admissionSvc.Submit(c.Request.Context(), principal, admission.SubmitRequest{
		SubmissionType: strings.TrimSpace(req.SubmissionType),
		Title:          strings.TrimSpace(req.Title),
		Metadata:       req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{
		"submission":     resp.Submission,
		"bypassed":       resp.Bypassed,
		"queue_position": resp.QueuePosition,
	}})
}

func (s *Server) ListMySubmissions(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrAuthRequired)
		return
	}

	items, err := s.submissionSvc.ListByPrincipal(c.Request.Context(), principal.ID, 100)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) GetSubmissionByID(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrAuthRequired)
		return
	}

	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	item, err := s.submissionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Owners see their own work; moderators and above see everything.
	if item.PrincipalID != principal.ID && !hierarchy.IsPrivileged(principal.Role) {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
