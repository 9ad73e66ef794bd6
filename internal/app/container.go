package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/events"
	"github.com/fieldworks/service-scheduling/internal/gateway/travel"
	"github.com/fieldworks/service-scheduling/internal/http/handlers"
	"github.com/fieldworks/service-scheduling/internal/http/pprofserver"
	"github.com/fieldworks/service-scheduling/internal/http/router"
	"github.com/fieldworks/service-scheduling/internal/logx"
	"github.com/fieldworks/service-scheduling/internal/ports/schedtx"
	"github.com/fieldworks/service-scheduling/internal/repository"
	"github.com/fieldworks/service-scheduling/internal/service/booking"
	"github.com/fieldworks/service-scheduling/internal/service/offer"
	"github.com/fieldworks/service-scheduling/internal/service/recommend"
	"github.com/fieldworks/service-scheduling/internal/service/status"
)

// sweepInterval is the period between offer expiry sweeps.
type sweepInterval time.Duration

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// build builds and returns a new dig container
func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the container for the job-intake worker.
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	b := NewContainerBuilder()
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		func(cfg *config.Config) sweepInterval {
			return sweepInterval(cfg.Sweep.Interval)
		},
		provideMetrics,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, logger logx.Logger, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

type travelIn struct {
	dig.In

	Cfg     *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"travel_retries_total"`
}

func registerGateways(container *dig.Container) error {
	estimatorProvider := func(in travelIn) travel.Estimator {
		area := travel.NewAreaGateway()

		live := travel.NewHTTPGateway(&http.Client{Timeout: in.Cfg.Travel.Timeout}, in.Cfg.Travel.BaseURL, in.Cfg.Travel.APIKey)
		if live == nil {
			return travel.NewFallbackGateway(in.Logger, area)
		}

		retrying := travel.NewRetryingGateway(live, in.Logger, in.Retries, travel.RetryConfig{
			MaxAttempts: in.Cfg.Travel.MaxAttempts,
			BaseDelay:   in.Cfg.Travel.BaseDelay,
			MaxDelay:    in.Cfg.Travel.MaxDelay,
		})
		return travel.NewFallbackGateway(in.Logger, retrying, area)
	}

	redisProvider := func(cfg *config.Config) *redis.Client {
		if cfg.Redis.Addr == "" {
			return nil
		}
		return redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}

	return provideAll(container, estimatorProvider, redisProvider)
}

type offerServiceIn struct {
	dig.In

	Runner    schedtx.Runner
	Validator *booking.Validator
	Notifier  offer.Notifier
	Bus       *events.Bus
	Cfg       *config.Config
	Timeout   time.Duration
	Logger    logx.Logger
	Created   prometheus.Counter `name:"offers_created_total"`
	Expired   prometheus.Counter `name:"offers_expired_total"`
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		repository.NewEngineerRepo,
		repository.NewJobRepo,
		repository.NewOfferRepo,
		repository.NewStatusRepo,
		func(r *repository.OfferRepo) schedtx.Runner { return r },
		func() time.Duration { return 3 * time.Second },
		func(logger logx.Logger) *events.Bus {
			bus := events.NewBus()
			bus.Subscribe(events.LogSubscriber(logger))
			return bus
		},
		func(bus *events.Bus) events.Publisher { return bus },
		func(logger logx.Logger) offer.Notifier { return offer.NewLogNotifier(logger) },
		func(
			jobs *repository.JobRepo,
			engineers *repository.EngineerRepo,
			estimator travel.Estimator,
			cfg *config.Config,
			timeout time.Duration,
			logger logx.Logger,
		) *recommend.Service {
			return recommend.NewService(jobs, engineers, estimator, cfg.Policy, timeout, logger)
		},
		func(
			runner schedtx.Runner,
			bus *events.Bus,
			cfg *config.Config,
			conflicts *prometheus.CounterVec,
			timeout time.Duration,
			logger logx.Logger,
		) *booking.Validator {
			return booking.NewValidator(runner, cfg.Policy, bus, conflicts, timeout, logger)
		},
		func(in offerServiceIn) *offer.Service {
			return offer.NewService(in.Runner, in.Validator, in.Notifier, in.Bus, in.Cfg.Policy,
				in.Created, in.Expired, in.Timeout, in.Logger)
		},
		func(repo *repository.StatusRepo, timeout time.Duration) *status.Service {
			return status.NewService(repo, timeout)
		},
	)
}

type pprofOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}

	pprofProvider := func(cfg *config.Config) pprofOut {
		if !cfg.Pprof.Enabled {
			return pprofOut{Server: nil}
		}
		return pprofOut{Server: &http.Server{
			Addr:              cfg.Pprof.Addr,
			Handler:           pprofserver.Handler(pprofserver.Config{User: cfg.Pprof.User, Pass: cfg.Pprof.Pass}),
			ReadHeaderTimeout: 5 * time.Second,
		}}
	}

	return provideAll(container,
		handlers.New,
		handlers.NewRecommendUsecase,
		handlers.NewRecommendHandler,
		handlers.NewOfferUsecase,
		handlers.NewOfferHandler,
		handlers.NewBookingUsecase,
		handlers.NewBookingHandler,
		handlers.NewStatusUsecase,
		handlers.NewStatusHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		router.New,
		serverProvider,
		pprofProvider,
	)
}
