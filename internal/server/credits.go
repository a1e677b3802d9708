package server

import (
	"net/http"

	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListMyCredits(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal == nil {
		AbortWithError(c, ErrAuthRequired)
		return
	}

	month := ledgerdomain.MonthOf(s.clock.Now())
	balances, err := s.ledgerSvc.Balances(c.Request.Context(), principal.ID, month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"month":    month.Format("2006-01"),
		"balances": balances,
	}})
}
