package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldworks/service-scheduling/internal/app"
	"github.com/fieldworks/service-scheduling/internal/config"
	"github.com/fieldworks/service-scheduling/internal/events"
	"github.com/fieldworks/service-scheduling/internal/metrics"
	"github.com/fieldworks/service-scheduling/internal/migrate"
	"github.com/fieldworks/service-scheduling/internal/repository"
	"github.com/fieldworks/service-scheduling/internal/service/offer"
)

var (
	version   = "dev"
	commitSHA = "none"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schedctl",
		Short: "Operational tooling for the scheduling service",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSweepCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("schedctl %s (commit=%s)\n", version, commitSHA)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := repository.NewPool(cmd.Context(), cfg.DB.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			if err := migrate.Run(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire stale offers once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := repository.NewPool(cmd.Context(), cfg.DB.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			logger := app.NewLogger()
			bus := events.NewBus()
			bus.Subscribe(events.LogSubscriber(logger))

			svc := offer.NewService(
				repository.NewOfferRepo(pool),
				nil, nil, bus, cfg.Policy,
				metrics.NewOffersCreatedTotal(), metrics.NewOffersExpiredTotal(),
				10*time.Second, logger,
			)

			n, err := svc.ExpireStale(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("expired %d stale offers\n", n)
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
