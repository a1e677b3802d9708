// Package notify declares the outbound notification collaborator. The
// real transport lives outside this core; admission treats every send
// as fire-and-forget.
package notify

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Event describes a successful admission worth announcing.
type Event struct {
	PrincipalID    snowflake.ID
	SubmissionID   snowflake.ID
	SubmissionType string
	Status         string
}

type Sender interface {
	// Send delivers the event. Errors are the caller's to log and
	// swallow; a failed notification never fails the admission.
	Send(ctx context.Context, event Event) error
}

type logSender struct {
	log *zap.Logger
}

// NewLogSender returns a Sender that only records the event. It stands
// in for the external delivery integration.
func NewLogSender(log *zap.Logger) Sender {
	return &logSender{log: log.Named("notify")}
}

func (s *logSender) Send(_ context.Context, event Event) error {
	s.log.Info("submission notification",
		zap.String("principal_id", event.PrincipalID.String()),
		zap.String("submission_id", event.SubmissionID.String()),
		zap.String("submission_type", event.SubmissionType),
		zap.String("status", event.Status),
	)
	return nil
}

// Module provides the default log-only sender.
var Module = fx.Module("notify",
	fx.Provide(NewLogSender),
)
