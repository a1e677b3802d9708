package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunGrantJob triggers a monthly grant run on demand. The run is
// idempotent, so calling it while the scheduled loop is active is
// harmless; the shared lock keeps the two from racing.
func (s *Server) RunGrantJob(c *gin.Context) {
	ctx := c.Request.Context()

	if s.limiter.Enabled() {
		token, ok, err := s.limiter.TryLockGrantRun(ctx)
		if err != nil {
			s.log.Warn("grant run lock unavailable, proceeding unlocked", zap.Error(err))
		} else if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": gin.H{
				"type":    "grant_run_in_progress",
				"message": "a grant run is already in progress",
			}})
			return
		} else {
			defer func() {
				if err := s.limiter.ReleaseGrantRun(ctx, token); err != nil {
					s.log.Warn("failed to release grant run lock", zap.Error(err))
				}
			}()
		}
	}

	report, err := s.grantJob.RunMonthlyGrants(ctx)
	if err != nil {
		// Partial failures still produced a useful report; surface both.
		s.log.Error("grant run completed with errors", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"data": report, "incomplete": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}
