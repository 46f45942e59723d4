package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/waterworks/internal/audit"
	"github.com/railzwaylabs/waterworks/internal/auth"
	"github.com/railzwaylabs/waterworks/internal/authorization"
	"github.com/railzwaylabs/waterworks/internal/bootstrap"
	"github.com/railzwaylabs/waterworks/internal/clock"
	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/railzwaylabs/waterworks/internal/customer"
	"github.com/railzwaylabs/waterworks/internal/migration"
	"github.com/railzwaylabs/waterworks/internal/observability"
	"github.com/railzwaylabs/waterworks/internal/payment"
	"github.com/railzwaylabs/waterworks/internal/providers"
	"github.com/railzwaylabs/waterworks/internal/reading"
	"github.com/railzwaylabs/waterworks/internal/redis"
	"github.com/railzwaylabs/waterworks/internal/report"
	"github.com/railzwaylabs/waterworks/internal/sector"
	"github.com/railzwaylabs/waterworks/internal/server"
	"github.com/railzwaylabs/waterworks/internal/session"
	"github.com/railzwaylabs/waterworks/internal/tariff"
	"github.com/railzwaylabs/waterworks/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const cliTimeout = 2 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "waterworks",
		Short:         "Water committee back office",
		Version:       readVersionFromEnv(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newUserCmd(), newDBCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(serveOptions())
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and activate the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(nil, migration.Module)
		},
	}
}

func serveOptions() fx.Option {
	return fx.Options(
		infrastructure(),
		redis.Module,
		session.Module,
		clock.Module,
		tariff.Module,
		authorization.Module,
		auth.Module,
		audit.Module,
		sector.Module,
		customer.Module,
		reading.Module,
		payment.Module,
		report.Module,
		providers.Module,
		bootstrap.Module,
		server.Module,
	)
}

// infrastructure is shared by every command: configuration, logging, ids
// and the database connection.
func infrastructure() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
	)
}

// runOnce starts an application for a single administrative task, runs
// task and stops the application again. fx lifecycle output is suppressed
// so that command output stays readable.
func runOnce(task func(context.Context) error, opts ...fx.Option) error {
	app := fx.New(
		infrastructure(),
		fx.Options(opts...),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	if task == nil {
		return nil
	}
	return task(ctx)
}

func registerSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
