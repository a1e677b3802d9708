package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	"github.com/deckforge/deckforge/internal/hierarchy"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListBenefits(c *gin.Context) {
	items, err := s.benefitSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (s *Server) SetBenefit(c *gin.Context) {
	var req benefitdomain.SetBenefitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.Tier = strings.TrimSpace(req.Tier)
	req.CreditType = strings.TrimSpace(req.CreditType)

	item, err := s.benefitSvc.SetBenefit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) GetPrincipalByID(c *gin.Context) {
	id, err := parsePrincipalID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	principal, err := s.principalSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": principal})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) SetPrincipalRole(c *gin.Context) {
	id, err := parsePrincipalID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	role, ok := hierarchy.ParseRole(strings.TrimSpace(req.Role))
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	principal, err := s.principalSvc.SetRole(c.Request.Context(), id, role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": principal})
}

type setTierRequest struct {
	Tier string `json:"tier"`
}

func (s *Server) SetPrincipalTier(c *gin.Context) {
	id, err := parsePrincipalID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// An empty tier clears the subscription, used when one lapses.
	tier, ok := hierarchy.ParseTier(strings.TrimSpace(req.Tier))
	if !ok {
		AbortWithError(c, invalidRequestError())
		return
	}

	principal, err := s.principalSvc.SetTier(c.Request.Context(), id, tier)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": principal})
}

type addCreditsRequest struct {
	CreditType string `json:"credit_type"`
	Amount     int    `json:"amount"`
	// Month is optional "YYYY-MM"; empty targets the current month.
	Month string `json:"month"`
}

func (s *Server) AddPrincipalCredits(c *gin.Context) {
	id, err := parsePrincipalID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req addCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	creditType := benefitdomain.CreditType(strings.TrimSpace(req.CreditType))
	if creditType == "" {
		AbortWithError(c, benefitdomain.ErrInvalidCreditType)
		return
	}

	month := s.clock.Now()
	if raw := strings.TrimSpace(req.Month); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		month = parsed
	}

	if err := s.ledgerSvc.AddCredits(c.Request.Context(), id, creditType, month, req.Amount); err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.ledgerSvc.Balance(c.Request.Context(), id, creditType, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"principal_id": id.String(),
		"credit_type":  creditType,
		"month":        ledgerdomain.MonthOf(month).Format("2006-01"),
		"balance":      balance,
	}})
}

func parsePrincipalID(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}
