package app

import (
	"context"
	"time"

	"go.uber.org/dig"

	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/repository"
	"github.com/fieldworks/service-scheduling/internal/service/jobs"
	"github.com/fieldworks/service-scheduling/internal/transport/kafka"
)

// handleTimeout bounds the processing of a single intake message.
const handleTimeout = 5 * time.Second

type jobsEventHandler interface {
	Handle(ctx context.Context, e jobs.Event) error
}

func makeJobsKafka(h jobsEventHandler) kafka.HandleFunc {
	return func(ctx context.Context, event jobs.Event) error {
		hCtx, cancel := context.WithTimeout(ctx, handleTimeout)
		defer cancel()
		return h.Handle(hCtx, event)
	}
}

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		repository.NewJobRepo,
		repository.NewOfferRepo,
		jobs.NewProcessor,
		func(p *jobs.Processor) kafka.HandleFunc { return makeJobsKafka(p) },
		func(logger logx.Logger, cfg *config.Config, h kafka.HandleFunc) (*kafka.Consumer, error) {
			return kafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, h)
		},
	)
}
