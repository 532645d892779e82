package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Shopmatic/apartment/adapters"
	"github.com/Shopmatic/apartment/config"
	f "github.com/Shopmatic/apartment/core"
	"github.com/Shopmatic/apartment/log"
	"github.com/Shopmatic/apartment/tasks"
	"github.com/spf13/cobra"
)

func main() {

	var cfg f.Config
	config.Load(&cfg)
	if cfg.MigrationsFS == nil {
		cfg.MigrationsFS = os.DirFS(".")
	}

	var (
		tenants  []string
		version  int64
		steps    int
		parallel bool
		workers  int
	)

	newRunner := func(ctx context.Context) (*tasks.Runner, error) {
		cfg.Parallel = parallel
		cfg.WorkerCount = workers
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		registry, err := adapters.NewRegistry(cfg)
		if err != nil {
			return nil, err
		}
		sessions := func(ctx context.Context) (*tasks.Session, error) {
			cnx, err := adapters.NewConnection(cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			migrator := adapters.NewMigrator(cfg)
			adapter, err := adapters.New(ctx, cfg, cnx, adapters.Options{Migrator: migrator})
			if err != nil {
				_ = cnx.Close()
				return nil, err
			}
			return &tasks.Session{Adapter: adapter, Connection: cnx, Migrator: migrator}, nil
		}
		return tasks.NewRunner(cfg, registry, sessions), nil
	}

	run := func(op tasks.Operation, params tasks.Params) error {
		ctx := context.Background()
		runner, err := newRunner(ctx)
		if err != nil {
			return err
		}
		return runner.Run(ctx, op, params, tenants...)
	}

	simple := func(use string, short string, op tasks.Operation) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(op, tasks.Params{})
			},
		}
	}

	root := &cobra.Command{
		Use:           "apartment",
		Short:         "Per-tenant database operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&tenants, "tenants", nil, "restrict the operation to these tenants instead of the registry")
	root.PersistentFlags().BoolVar(&parallel, "parallel", cfg.Parallel, "run the operation across a worker pool")
	root.PersistentFlags().IntVar(&workers, "workers", cfg.WorkerCount, "worker pool size when --parallel is set")

	rollback := &cobra.Command{
		Use:   "rollback",
		Short: "Roll back tenant migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(tasks.OpRollback, tasks.Params{Steps: steps})
		},
	}
	rollback.Flags().IntVar(&steps, "step", 1, "number of migrations to roll back per tenant")

	versioned := func(use string, short string, op tasks.Operation) *cobra.Command {
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(c *cobra.Command, args []string) error {
				params := tasks.Params{}
				if c.Flags().Changed("version") {
					params.Version = &version
				}
				return run(op, params)
			},
		}
		cmd.Flags().Int64Var(&version, "version", 0, "target migration version (required)")
		return cmd
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the tenants known to the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			registry, err := adapters.NewRegistry(cfg)
			if err != nil {
				return err
			}
			found, err := registry.Tenants(cmd.Context())
			if err != nil {
				return err
			}
			for _, tenant := range found {
				fmt.Fprintln(cmd.OutOrStdout(), tenant)
			}
			return nil
		},
	}

	root.AddCommand(
		simple("create", "Provision every tenant", tasks.OpCreate),
		simple("drop", "Remove every tenant and its data", tasks.OpDrop),
		simple("migrate", "Apply pending migrations to every tenant", tasks.OpMigrate),
		simple("seed", "Apply seed data to every tenant", tasks.OpSeed),
		simple("redo", "Re-apply the latest migration for every tenant", tasks.OpRedo),
		rollback,
		versioned("up", "Migrate every tenant up to a specific version", tasks.OpUp),
		versioned("down", "Migrate every tenant down to a specific version", tasks.OpDown),
		list,
	)

	if err := root.Execute(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
