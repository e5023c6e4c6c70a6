package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ecomstore/backend/internal/infrastructure/config"
	"github.com/ecomstore/backend/internal/infrastructure/logger"
	"github.com/ecomstore/backend/internal/infrastructure/persistence"
	"github.com/ecomstore/backend/internal/infrastructure/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configLoader is config.Load outside of tests
type configLoader func() (*config.Config, error)

type runOptions struct {
	reset    bool
	fake     int
	fakeSeed uint64
	fixtures string
	logLevel string
}

func newRootCommand(load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Load sample storefront data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCommand(load))
	return cmd
}

func newRunCommand(load configLoader) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Insert the sample users and products",
		Long: `Insert the sample accounts and catalog.

By default existing users, products, carts and orders are deleted first.
With --reset=false users that already exist are skipped and products are added.`,
		Example: `  seed run
  seed run --reset=false --fake 50 --fake-seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, load, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.reset, "reset", true, "delete existing storefront data first")
	cmd.Flags().IntVar(&opts.fake, "fake", 0, "number of extra generated products")
	cmd.Flags().Uint64Var(&opts.fakeSeed, "fake-seed", 0, "seed for generated products (0 = random)")
	cmd.Flags().StringVar(&opts.fixtures, "fixtures", "", "YAML fixtures file (default: built-in sample data)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func runSeed(cmd *cobra.Command, load configLoader, opts *runOptions) error {
	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fx, err := loadFixtures(opts.fixtures)
	if err != nil {
		return err
	}

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(opts.logLevel)))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Error closing database", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	seeder := seed.NewSeeder(
		persistence.NewGormUnitOfWork(db.DB),
		persistence.NewGormUserRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		db,
		log,
	)
	result, err := seeder.Run(context.Background(), fx, seed.Options{
		Reset:    opts.reset,
		Fake:     opts.fake,
		FakeSeed: opts.fakeSeed,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded %d users (%d skipped) and %d products (%d generated)\n",
		result.Users, result.SkippedUsers, result.Products, result.FakeProducts)
	fmt.Fprintln(out, "Sample credentials:")
	for _, u := range fx.Users {
		role := u.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(out, "  %-6s %s / %s\n", role, u.Email, u.Password)
	}
	return nil
}

func loadFixtures(path string) (*seed.Fixtures, error) {
	if path == "" {
		return seed.DefaultFixtures()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return seed.ParseFixtures(data)
}
