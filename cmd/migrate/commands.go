package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/ecomstore/backend/internal/infrastructure/config"
	"github.com/ecomstore/backend/internal/infrastructure/logger"
	"github.com/ecomstore/backend/internal/infrastructure/migration"
	"github.com/ecomstore/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

// rootOptions holds flags shared by every subcommand
type rootOptions struct {
	path     string
	logLevel string
	log      *zap.Logger
}

// source returns the migration set: the directory given with --path, or the
// set embedded in the binary
func (o *rootOptions) source() fs.FS {
	if o.path != "" {
		return os.DirFS(o.path)
	}
	return migrations.FS
}

// withMigrator opens the configured postgres database and runs fn against it
func (o *rootOptions) withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, o.log, migration.WithSource(o.source()))
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			o.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "EcomStore database migration tool",
		Long:          "Apply, roll back and author the postgres schema migrations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(&logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "migrations directory (default: embedded set)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newUpCommand(opts),
		newDownCommand(opts),
		newStepsCommand(opts),
		newGotoCommand(opts),
		newVersionCommand(opts),
		newForceCommand(opts),
		newDropCommand(opts),
		newCreateCommand(opts),
		newListCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withMigrator((*migration.Migrator).Up)
		},
	}
}

func newDownCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withMigrator((*migration.Migrator).Down)
		},
	}
}

func newStepsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "steps <n>",
		Aliases: []string{"step"},
		Short:   "Apply n migrations (positive=up, negative=down)",
		Example: "  migrate steps -- -1",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			if n == 0 {
				return errors.New("step count cannot be zero")
			}
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.Steps(n)
			})
		},
	}
}

func newGotoCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.GoTo(uint(version))
			})
		},
	}
}

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withMigrator(func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					opts.log.Info("No migrations applied")
					return nil
				}
				opts.log.Info("Current migration version",
					zap.Uint("version", version),
					zap.Bool("dirty", dirty),
				)
				return nil
			})
		},
	}
}

func newForceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the version without running migrations (clears a dirty state)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.Force(version)
			})
		},
	}
}

func newDropCommand(opts *rootOptions) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every database object (requires --confirm)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("drop cancelled, pass --confirm to drop all tables")
			}
			return opts.withMigrator((*migration.Migrator).Drop)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm dropping all tables")
	return cmd
}

func newCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "create <name> [description]",
		Short:   "Create the next sequential up/down migration pair",
		Example: `  migrate create add_coupons "Coupons applied at checkout"`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.path
			if dir == "" {
				dir = defaultMigrationsDir
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			opts.log.Info("Migration created",
				zap.Uint("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := migration.ListMigrations(opts.source())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations found")
				return nil
			}
			for _, m := range list {
				down := ""
				if !m.HasDown {
					down = " (no down)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%06d  %s%s\n", m.Version, m.Name, down)
			}
			return nil
		},
	}
}
