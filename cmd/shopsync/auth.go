package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"shopsync/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage shop credentials",
	Long: `Manage stored shop credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [shop-domain]",
	Short: "Store shop credentials securely",
	Long: `Store admin API credentials for a shop.

You will be prompted for:
  - Shop domain (if not provided), e.g. example.myshopify.com
  - Admin API access token (hidden as you type)
  - Inventory location ID (optional)`,
	Example: `  # Interactive login
  shopsync auth login

  # Login with shop domain
  shopsync auth login example.myshopify.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:     "logout <shop-domain>",
	Short:   "Remove stored credentials",
	Example: `  shopsync auth logout example.myshopify.com`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored shops",
	Long:  `List all stored shops with sanitized credential information.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	var domain string
	if len(args) > 0 {
		domain = args[0]
	} else {
		fmt.Print("Shop domain (e.g. example.myshopify.com): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read shop domain: %w", err)
		}
		domain = strings.TrimSpace(input)
	}
	if domain == "" {
		return fmt.Errorf("shop domain is required")
	}

	if existing, _ := manager.Retrieve(domain); existing != nil {
		fmt.Printf("Shop '%s' already exists. Update credentials? (y/N): ", domain)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Admin API access token: ")
	token, err := readPassword()
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("access token is required")
	}

	fmt.Print("Inventory location ID (press Enter to skip): ")
	location, _ := reader.ReadString('\n')
	location = strings.TrimSpace(location)

	shop := &auth.Shop{
		Domain:      domain,
		AccessToken: token,
		LocationID:  location,
	}

	if err := manager.Store(shop); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Printf("Credentials stored for %s\n", domain)
	fmt.Println("\nRun a sync with:")
	fmt.Printf("  shopsync sync --shop %s\n", domain)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	domain := args[0]
	if err := manager.Delete(domain); err != nil {
		return fmt.Errorf("failed to remove shop: %w", err)
	}

	fmt.Printf("Shop removed: %s\n", domain)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	shops, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list shops: %w", err)
	}

	if len(shops) == 0 {
		fmt.Println("No stored shops. Use 'shopsync auth login' to add one.")
		return nil
	}

	fmt.Println("Stored shops:")
	for i, shop := range shops {
		sanitized := auth.SanitizeShop(shop)
		fmt.Printf("%d. %s\n", i+1, sanitized.Domain)
		fmt.Printf("   Access Token: %s\n", sanitized.AccessToken)
		if sanitized.LocationID != "" {
			fmt.Printf("   Location ID: %s\n", sanitized.LocationID)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
