package jobs

import (
	"context"

	"github.com/fieldworks/service-scheduling/internal/domain"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
)

// TxRunner abstracts running a function within a scheduling transaction
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx schedtx.Repository) error) error
}

type jobStore interface {
	GetByRef(ctx context.Context, ref string) (*domain.Job, error)
	Create(ctx context.Context, j *domain.Job) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialJobUpdate) (bool, error)
}
