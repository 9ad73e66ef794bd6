package booking

import (
	"context"

	"github.com/fieldworks/service-scheduling/internal/events"
)

type publisher interface {
	Publish(ctx context.Context, ev events.Event)
}
