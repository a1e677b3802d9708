// Package admission orchestrates privileged-action requests: role
// bypass, tier gate, quota consumption, the protected create, and the
// compensating refund when the create fails.
package admission

import (
	"context"
	"strings"

	"github.com/deckforge/deckforge/internal/hierarchy"
	"github.com/deckforge/deckforge/internal/metrics"
	"github.com/deckforge/deckforge/internal/notify"
	principaldomain "github.com/deckforge/deckforge/internal/principal/domain"
	submissiondomain "github.com/deckforge/deckforge/internal/submission/domain"
	"go.uber.org/zap"
)

type SubmitRequest struct {
	SubmissionType string         `json:"submission_type"`
	Title          string         `json:"title"`
	Metadata       map[string]any `json:"metadata"`
}

type SubmitResponse struct {
	Submission    *submissiondomain.Submission
	Bypassed      bool
	QueuePosition *int
}

type Service struct {
	log         *zap.Logger
	registry    *Registry
	policy      QuotaPolicy
	submissions submissiondomain.Service
	sender      notify.Sender
	metrics     *metrics.Metrics
}

func NewService(log *zap.Logger, registry *Registry, policy QuotaPolicy, submissions submissiondomain.Service, sender notify.Sender, m *metrics.Metrics) *Service {
	return &Service{
		log:         log.Named("admission.service"),
		registry:    registry,
		policy:      policy,
		submissions: submissions,
		sender:      sender,
		metrics:     m,
	}
}

// Submit runs the full admission pipeline for one protected action.
func (s *Service) Submit(ctx context.Context, principal *principaldomain.Principal, req SubmitRequest) (*SubmitResponse, error) {
	if principal == nil {
		return nil, ErrAuthRequired
	}

	action, ok := s.registry.Lookup(strings.TrimSpace(req.SubmissionType))
	if !ok {
		return nil, ErrInvalidSubmission
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalidSubmission
	}

	bypass := hierarchy.IsPrivileged(principal.Role)

	var adm *Admission
	if bypass {
		// Privileged principals act without tier or credit constraints.
		adm = &Admission{Status: submissiondomain.StatusPending}
	} else {
		if action.MinTier != hierarchy.TierNone && !principal.Tier.AtLeast(action.MinTier) {
			s.count(metrics.DecisionTierDenied)
			return nil, &TierRequiredError{Required: action.MinTier, Current: principal.Tier}
		}

		var err error
		adm, err = s.policy.Admit(ctx, principal, action)
		if err != nil {
			s.countAdmitFailure(err)
			return nil, err
		}
	}

	sub, err := s.submissions.Create(ctx, submissiondomain.CreateRequest{
		PrincipalID:    principal.ID,
		SubmissionType: action.Type,
		Title:          req.Title,
		Status:         adm.Status,
		QueuePosition:  adm.QueuePosition,
		Metadata:       req.Metadata,
	})
	if err != nil {
		// The quota was consumed but the protected action never became
		// durable; compensate before reporting.
		if !bypass {
			if relErr := s.policy.Release(ctx, adm); relErr != nil {
				s.log.Error("quota release failed after create error",
					zap.String("principal_id", principal.ID.String()),
					zap.String("request_id", adm.RequestID),
					zap.Error(relErr),
				)
			}
		}
		s.count(metrics.DecisionError)
		s.log.Error("submission create failed",
			zap.String("principal_id", principal.ID.String()),
			zap.Error(err),
		)
		return nil, ErrSubmissionStore
	}

	// Best-effort announcement; a failed send never fails the request.
	if sendErr := s.sender.Send(ctx, notify.Event{
		PrincipalID:    principal.ID,
		SubmissionID:   sub.ID,
		SubmissionType: sub.SubmissionType,
		Status:         string(sub.Status),
	}); sendErr != nil {
		s.log.Warn("submission notification failed",
			zap.String("submission_id", sub.ID.String()),
			zap.Error(sendErr),
		)
	}

	switch {
	case bypass:
		s.count(metrics.DecisionBypassed)
	case sub.Status == submissiondomain.StatusQueued:
		s.count(metrics.DecisionQueued)
	default:
		s.count(metrics.DecisionAdmitted)
	}

	return &SubmitResponse{
		Submission:    sub,
		Bypassed:      bypass,
		QueuePosition: adm.QueuePosition,
	}, nil
}

func (s *Service) count(decision string) {
	if s.metrics == nil {
		return
	}
	s.metrics.AdmissionDecisions.WithLabelValues(decision, s.policy.Name()).Inc()
}

func (s *Service) countAdmitFailure(err error) {
	switch {
	case err == nil:
		return
	case isNoCredits(err):
		s.count(metrics.DecisionNoCredits)
	case isMonthlyLimit(err):
		s.count(metrics.DecisionLimitReached)
	default:
		s.count(metrics.DecisionError)
	}
}
