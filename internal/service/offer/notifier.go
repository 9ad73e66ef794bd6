package offer

import (
	"context"

	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/logx"
)

// LogNotifier is a stand-in delivery channel until a real email/SMS
// integration lands. It records the dispatch without the full token; only a
// real recipient channel may carry that.
type LogNotifier struct {
	logger logx.Logger
}

// NewLogNotifier creates the logging notifier.
func NewLogNotifier(logger logx.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Deliver logs the dispatch.
func (n *LogNotifier) Deliver(_ context.Context, o *domain.JobOffer) error {
	n.logger.Info("offer dispatched",
		logx.String("event", "offer_dispatched"),
		logx.Int64("offer_id", o.ID),
		logx.Int64("job_id", o.JobID),
		logx.String("channel", string(o.Channel)),
		logx.String("token_hint", o.TokenHint()),
		logx.Time("expires_at", o.ExpiresAt),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
