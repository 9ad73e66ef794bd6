//go:generate mockgen -source=contracts.go -destination=offer_mocks_test.go -package=offer

package offer

import (
	"context"
	"time"

	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/events"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
	"github.com/fieldworks/service-scheduling/internal/service/booking"
)

// Notifier dispatches an offer to its recipient channel. This is the only
// surface that ever sees the full token.
type Notifier interface {
	Deliver(ctx context.Context, o *domain.JobOffer) error
}

// Confirmer is the subset of the booking validator used on acceptance, so
// accept and commit land in the same transaction.
type Confirmer interface {
	ConfirmTx(ctx context.Context, tx schedtx.Repository, jobID, engineerID int64, date time.Time, source booking.Source) error
}

type publisher interface {
	Publish(ctx context.Context, ev events.Event)
}

type counter interface {
	Inc()
}
