package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/deckforge/deckforge/internal/hierarchy"
	"github.com/deckforge/deckforge/internal/metrics"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// HeaderPrincipal carries the authenticated principal's id, set by
	// the auth gateway in front of this service.
	HeaderPrincipal = "X-Principal-ID"

	contextPrincipalKey = "principal"
)

// GuardRule maps a route prefix to the minimum role allowed past it.
type GuardRule struct {
	PathPrefix string
	MinRole    hierarchy.Role
}

// ResolvePrincipal loads the principal named by the request header. A
// missing or unknown id leaves the request anonymous; route guards and
// handlers decide whether that is fatal.
func (s *Server) ResolvePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderPrincipal))
		if raw == "" {
			c.Next()
			return
		}

		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrAuthRequired)
			return
		}

		principal, err := s.principalSvc.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, principaldomain.ErrNotFound) {
				AbortWithError(c, ErrAuthRequired)
				return
			}
			AbortWithError(c, err)
			return
		}
		if !principal.Active {
			AbortWithError(c, ErrForbidden)
			return
		}

		c.Set(contextPrincipalKey, principal)
		c.Next()
	}
}

// Guard enforces path-prefix role minimums. The longest matching
// prefix wins, so a nested subtree can demand a higher role than its
// parent.
func (s *Server) Guard(rules []GuardRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := matchGuardRule(rules, c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		principal := currentPrincipal(c)
		if principal == nil {
			AbortWithError(c, ErrAuthRequired)
			return
		}
		if !principal.Role.AtLeast(rule.MinRole) {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func matchGuardRule(rules []GuardRule, path string) (GuardRule, bool) {
	var best GuardRule
	found := false
	for _, rule := range rules {
		if !strings.HasPrefix(path, rule.PathPrefix) {
			continue
		}
		if !found || len(rule.PathPrefix) > len(best.PathPrefix) {
			best = rule
			found = true
		}
	}
	return best, found
}

// SubmitRateLimit throttles submission creation per principal. Redis
// being down fails open: quota enforcement still happens in the
// admission pipeline.
func (s *Server) SubmitRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		principal := currentPrincipal(c)
		if principal == nil {
			AbortWithError(c, ErrAuthRequired)
			return
		}

		res, err := s.limiter.AllowSubmit(c.Request.Context(), principal.ID)
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			retryAfter := int(res.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) *principaldomain.Principal {
	v, ok := c.Get(contextPrincipalKey)
	if !ok {
		return nil
	}
	principal, ok := v.(*principaldomain.Principal)
	if !ok {
		return nil
	}
	return principal
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if last := c.Errors.Last(); last != nil {
			fields = append(fields, zap.Error(last.Err))
		}
		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
