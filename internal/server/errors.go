package server

import (
	"errors"
	"net/http"

	"github.com/deckforge/deckforge/internal/admission"
	benefitdomain "github.com/deckforge/deckforge/internal/benefit/domain"
	ledgerdomain "github.com/deckforge/deckforge/internal/ledger/domain"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrAuthRequired = errors.New("auth_required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
	ErrRateLimited  = errors.New("rate_limited")
	ErrInternal     = errors.New("internal_error")
)

type errorPayload struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return admission.ErrInvalidSubmission
}

func mapError(err error) (int, errorPayload) {
	if tierErr, ok := admission.IsTierRequired(err); ok {
		current := string(tierErr.Current)
		if current == "" {
			current = "none"
		}
		return http.StatusForbidden, errorPayload{
			Type:    "tier_required",
			Message: "a higher subscription tier is required for this action",
			Details: map[string]any{
				"required_tier": string(tierErr.Required),
				"current_tier":  current,
			},
		}
	}

	if limitErr, ok := admission.IsMonthlyLimit(err); ok {
		return http.StatusTooManyRequests, errorPayload{
			Type:    "monthly_limit_reached",
			Message: "monthly submission limit reached",
			Details: map[string]any{
				"max_active": limitErr.MaxActive,
				"max_queued": limitErr.MaxQueued,
			},
		}
	}

	switch {
	case errors.Is(err, ErrAuthRequired),
		errors.Is(err, admission.ErrAuthRequired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "auth_required",
			Message: "authentication required",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, admission.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, admission.ErrNoCredits),
		errors.Is(err, ledgerdomain.ErrInsufficientCredits):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "no_credits",
			Message: "no credits remaining this month",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, admission.ErrCreditsUnavailable),
		errors.Is(err, admission.ErrCreditDeduction):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "credits_error",
			Message: "credit service unavailable, try again",
		}
	case errors.Is(err, admission.ErrSubmissionStore):
		return http.StatusInternalServerError, errorPayload{
			Type:    "database_error",
			Message: "failed to store submission",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, admission.ErrInvalidSubmission),
		errors.Is(err, principaldomain.ErrInvalidUsername),
		errors.Is(err, principaldomain.ErrInvalidRole),
		errors.Is(err, principaldomain.ErrInvalidTier),
		errors.Is(err, benefitdomain.ErrInvalidTier),
		errors.Is(err, benefitdomain.ErrInvalidCreditType),
		errors.Is(err, benefitdomain.ErrInvalidAllotment),
		errors.Is(err, submissiondomain.ErrInvalidType),
		errors.Is(err, submissiondomain.ErrInvalidTitle),
		errors.Is(err, submissiondomain.ErrInvalidStatus),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidRequestID):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, principaldomain.ErrNotFound),
		errors.Is(err, submissiondomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
