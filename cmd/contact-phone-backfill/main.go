package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crm_backend/internal/contacts/backfill"
	"crm_backend/internal/contacts/repository"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contact-phone-backfill",
	Short: "Rewrite legacy contact phone numbers into stored form",
	Long: `Scans contacts whose phone or WhatsApp value is not "+" followed by digits
and rewrites it into stored form. Values without a calling code are read in
--region; values that cannot be resolved are left untouched.`,
	SilenceUsage: true,
	RunE:         runBackfill,
}

func init() {
	rootCmd.Flags().Int("batch-size", backfill.DefaultBatchSize, "Contacts processed per query")
	rootCmd.Flags().String("region", phone.DefaultRegion, "ISO region used for numbers without a calling code (empty to skip them)")
	rootCmd.Flags().Bool("dry-run", false, "Log the rewrites without writing them")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	region, _ := cmd.Flags().GetString("region")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Env)
	log.Info("starting contact phone backfill", "batchSize", batchSize, "region", region, "dryRun", dryRun)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	runner := backfill.New(repository.New(pool), phone.Default(), log)
	stats, err := runner.Run(ctx, backfill.Options{BatchSize: batchSize, Region: region, DryRun: dryRun})
	log.Info("contact phone backfill finished", "scanned", stats.Scanned, "updated", stats.Updated, "skipped", stats.Skipped)
	if err != nil {
		log.Error("contact phone backfill failed", "error", err)
		return err
	}
	return nil
}
