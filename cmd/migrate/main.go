package main

import (
	"context"
	"fmt"
	"os"

	"judicial-archive/internal/app"
	"judicial-archive/internal/config"
	"judicial-archive/internal/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	driver   string
	seedWith uint64

	log *zap.Logger
	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Schema and demo data management for the judicial archive",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			if driver != "" {
				cfg.StoreDriver = driver
			}
			cfg.AutoMigrate = true

			var err error
			log, err = utils.NewLogger(cfg.AppEnv, cfg.LogLevel, nil)
			if err != nil {
				return err
			}
			return cfg.Validate()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}

	upCmd = &cobra.Command{
		Use:   "up",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then load demo data into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context())
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of migrate",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("migrate version %s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "store driver to migrate (sqlite or postgres); defaults to STORE_DRIVER")
	seedCmd.Flags().Uint64Var(&seedWith, "seed", 0, "random seed for reproducible demo data; 0 picks one")
	rootCmd.AddCommand(upCmd, seedCmd, versionCmd)
}

func migrate() error {
	if cfg.StoreDriver == config.StoreMemory {
		return fmt.Errorf("nothing to migrate for the %s store", config.StoreMemory)
	}
	store, err := app.OpenStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	log.Info("migration complete", zap.String("store", cfg.StoreDriver))
	return nil
}

func seed(ctx context.Context) error {
	if cfg.StoreDriver == config.StoreMemory {
		return fmt.Errorf("the %s store does not outlive this process; seed it from the api server", config.StoreMemory)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	res, err := a.Seed(ctx, seedWith)
	if err != nil {
		return err
	}
	if res.Skipped {
		log.Info("database already populated; seeding skipped")
		return nil
	}
	log.Info("demo data seeded",
		zap.Int("users", res.Users),
		zap.Int("blocks", res.Blocks),
		zap.Int("rows", res.Rows),
		zap.Int("sections", res.Sections),
		zap.Int("documents", res.Documents),
		zap.Int("papers", res.Papers),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
