package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/shop-api/internal/config"
	"github.com/redmonkez12/shop-api/internal/logging"
	"github.com/redmonkez12/shop-api/internal/seed"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "seed",
		Short:        "Restore the data directory from the seed directory",
		Long:         "Copies products.json, orders.json, cart.json and users.json from the seed directory over the live data files.",
		RunE:         runSeed,
		SilenceUsage: true,
	}

	// Defaults come from DATA_DIR and SEED_DIR (or .env) so the API and the seeder agree
	rootCmd.Flags().String("seed-dir", "", "Directory holding the pristine files (default $SEED_DIR or ./seed)")
	rootCmd.Flags().String("data-dir", "", "Directory the API reads (default $DATA_DIR or ./data)")
	rootCmd.Flags().StringSlice("file", seed.Files(), "Files to restore")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewLogger(cfg.Server.IsDevelopment())

	seedDir, _ := cmd.Flags().GetString("seed-dir")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	files, _ := cmd.Flags().GetStringSlice("file")
	if seedDir == "" {
		seedDir = cfg.Data.SeedDir
	}
	if dataDir == "" {
		dataDir = cfg.Data.Dir
	}

	if err := seed.Restore(cmd.Context(), seedDir, dataDir, files); err != nil {
		logger.Error("seed failed", "seed_dir", seedDir, "data_dir", dataDir, "error", err)
		return err
	}

	logger.Info("data restored", "seed_dir", seedDir, "data_dir", dataDir, "files", files)
	return nil
}
