package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"shopsync/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage shopsync configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (SHOPSYNC_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	RunE:  runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long:  `Show the configuration merged from all sources, with the access token masked.`,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".shopsync.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	exampleConfig := `# shopsync configuration file
#
# Every option can also be set via environment variables prefixed
# with SHOPSYNC_, for example SHOPSYNC_SHOP_URL or SHOPSYNC_ACCESS_TOKEN.

# Remote shop connection
shop:
  # Admin API base URL, e.g. https://example.myshopify.com
  url: ""

  # Admin API access token; prefer 'shopsync auth login' or the
  # SHOPSYNC_ACCESS_TOKEN environment variable over this file
  access_token: ""

  # Admin API version
  api_version: "2024-01"

  # Inventory location id for stock mutations
  location_id: ""

# Outbound call quota and retry budget
rate_limit:
  calls_per_second: 2
  max_retries: 3

# Remote catalog cache
cache:
  ttl_seconds: 300

# Reconciliation behaviour
sync:
  # Concurrent workers per batch (1-10)
  workers: 2

  # Inventory quantity written for available variants
  in_stock_quantity: 1000

  # Directory of per-brand snapshot files
  input_dir: "./output"

  # Explicit snapshot files; overrides input_dir when set
  brand_files: []

  # Vendors to skip entirely
  excluded_vendors: []

  # Reject products without any image
  require_images: false

# Price transform
pricing:
  # Multiplier applied before rounding up to .99
  markup: 1.075

# Logging
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path; empty logs to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	fmt.Printf("Configuration file created: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Set the shop URL and store a token with 'shopsync auth login'")
	fmt.Println("2. Run 'shopsync config show' to check the resolved configuration")
	fmt.Println("3. Start syncing with 'shopsync sync'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	displayCfg := *cfg
	if displayCfg.Shop.AccessToken != "" {
		if len(displayCfg.Shop.AccessToken) > 8 {
			token := displayCfg.Shop.AccessToken
			displayCfg.Shop.AccessToken = token[:4] + "..." + token[len(token)-4:]
		} else {
			displayCfg.Shop.AccessToken = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (SHOPSYNC_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (auto-detected)")
	}
	fmt.Println("4. Default values")
	return nil
}
