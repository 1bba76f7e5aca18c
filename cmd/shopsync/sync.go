package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"shopsync/pkg/auth"
	"shopsync/pkg/config"
	"shopsync/pkg/loader"
	"shopsync/pkg/logger"
	"shopsync/pkg/models"
	"shopsync/pkg/pricing"
	"shopsync/pkg/ratelimit"
	"shopsync/pkg/reconcile"
	"shopsync/pkg/shopify"
	"shopsync/pkg/syncer"
	"shopsync/pkg/validate"
)

var (
	// Sync command flags
	inputDir       string
	shopURL        string
	locationID     string
	shopName       string
	workers        int
	callsPerSecond float64
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [snapshot files...]",
	Short: "Reconcile local snapshots against the remote catalog",
	Long: `Reconcile per-brand snapshot files against the remote shop catalog.

With no arguments, every *.json file in the input directory is processed
as one batch per file. Credentials are resolved from stored shops
('shopsync auth login'), then environment variables
(SHOPSYNC_SHOP_URL and SHOPSYNC_ACCESS_TOKEN), then the config file.`,
	Example: `  # Sync every snapshot in the input directory
  shopsync sync

  # Sync specific brand files
  shopsync sync output/pesoclo.json output/vicinity.json

  # Slow down for a shared quota
  shopsync sync --calls-per-second 1`,
	Args: cobra.ArbitraryArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory of per-brand snapshot files")
	syncCmd.Flags().StringVar(&shopURL, "shop-url", "", "remote shop URL")
	syncCmd.Flags().StringVar(&locationID, "location-id", "", "inventory location id")
	syncCmd.Flags().StringVarP(&shopName, "shop", "s", "", "use a specific stored shop")
	syncCmd.Flags().IntVar(&workers, "workers", 0, "concurrent workers per batch")
	syncCmd.Flags().Float64Var(&callsPerSecond, "calls-per-second", 0, "outbound API call quota")
}

func runSync(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if inputDir != "" {
		flags["input"] = inputDir
	}
	if shopURL != "" {
		flags["shop-url"] = shopURL
	}
	if locationID != "" {
		flags["location-id"] = locationID
	}
	if workers > 0 {
		flags["workers"] = workers
	}
	if callsPerSecond > 0 {
		flags["calls-per-second"] = callsPerSecond
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	if err := resolveCredentials(flags); err != nil {
		return err
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("shopsync starting")

	if cfg.Shop.AccessToken == "" {
		return fmt.Errorf("no access token found; run 'shopsync auth login' or set SHOPSYNC_ACCESS_TOKEN")
	}

	batches, skippedFiles, err := loadBatches(cfg, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := buildSyncer(cfg, log).Run(ctx, batches, skippedFiles == 0)
	if err != nil {
		log.WithError(err).Error("sync run aborted")
		return err
	}

	fmt.Printf("\nSync complete in %s\n", summary.Elapsed.Round(time.Second))
	fmt.Printf("  processed: %d\n", summary.Processed)
	fmt.Printf("  succeeded: %d\n", summary.Succeeded)
	fmt.Printf("  skipped:   %d\n", summary.Skipped)
	fmt.Printf("  failed:    %d\n", summary.Failed)
	fmt.Printf("  disabled:  %d\n", summary.Disabled)

	if summary.Failed > 0 {
		return fmt.Errorf("%d products failed to sync", summary.Failed)
	}
	return nil
}

// resolveCredentials fills shop connection flags from the credential manager
// when they were not given on the command line or in the environment
func resolveCredentials(flags map[string]interface{}) error {
	manager, err := auth.NewManager()
	if err != nil {
		// no credential backend is fine as long as env/config carries the token
		return nil
	}

	var shop *auth.Shop
	if shopName != "" {
		shop, err = manager.Retrieve(shopName)
		if err != nil {
			return fmt.Errorf("stored shop not found: %s", shopName)
		}
	} else {
		shop, err = manager.RetrieveDefault()
		if err != nil {
			return nil
		}
	}

	if _, ok := flags["shop-url"]; !ok {
		flags["shop-url"] = shop.URL()
	}
	flags["access-token"] = shop.AccessToken
	if shop.LocationID != "" {
		if _, ok := flags["location-id"]; !ok {
			flags["location-id"] = shop.LocationID
		}
	}

	return nil
}

func loadBatches(cfg *config.Config, args []string) ([]models.Batch, int, error) {
	l := loader.New(logger.GetLogger())

	if len(args) > 0 {
		return l.LoadFiles(args)
	}
	if len(cfg.Sync.BrandFiles) > 0 {
		return l.LoadFiles(cfg.Sync.BrandFiles)
	}
	return l.LoadDir(cfg.Sync.InputDir)
}

func buildSyncer(cfg *config.Config, log logger.Logger) *syncer.Syncer {
	limiter := ratelimit.NewInterval(cfg.RateLimit.CallsPerSecond)
	client := shopify.NewClient(shopify.ClientOptions{
		ShopURL:     cfg.Shop.URL,
		AccessToken: cfg.Shop.AccessToken,
		APIVersion:  cfg.Shop.APIVersion,
		LocationID:  cfg.Shop.LocationID,
		MaxRetries:  cfg.RateLimit.MaxRetries,
	}, limiter, log)

	cache := shopify.NewProductCache(client, time.Duration(cfg.Cache.TTLSeconds)*time.Second, log)
	reconciler := reconcile.New(client, pricing.New(cfg.Pricing.Markup), cfg.Sync.InStockQuantity, log)
	validator := &validate.Validator{
		ExcludedVendors: cfg.Sync.ExcludedVendors,
		RequireImages:   cfg.Sync.RequireImages,
	}

	return syncer.New(cache, reconciler, client, validator, cfg.Sync.Workers, log)
}
