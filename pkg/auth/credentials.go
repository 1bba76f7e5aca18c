// Package auth stores and resolves shop credentials: the admin API access
// token keyed by shop domain. Backends are tried in order of safety, from
// the system keychain through an encrypted file down to environment
// variables.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Shop holds the credentials for one store's admin API
type Shop struct {
	Domain       string    `json:"domain"`
	AccessToken  string    `json:"access_token"`
	APIVersion   string    `json:"api_version,omitempty"`
	LocationID   string    `json:"location_id,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// URL returns the https base URL for the shop's admin API
func (s *Shop) URL() string {
	domain := strings.TrimSuffix(s.Domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

// CredentialStore is the interface for storing and retrieving shop credentials
type CredentialStore interface {
	// Store saves credentials for a shop
	Store(shop *Shop) error

	// Retrieve gets credentials for a specific shop domain
	Retrieve(domain string) (*Shop, error)

	// List returns all stored shops
	List() ([]*Shop, error)

	// Delete removes credentials for a specific shop domain
	Delete(domain string) error

	// Exists checks if credentials exist for a shop domain
	Exists(domain string) bool
}

// Manager handles credential storage with fallback backends
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager with the available backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	// Keychain first, when the platform offers one
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Environment as last resort, read-only
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves credentials using the first backend that accepts them
func (m *Manager) Store(shop *Shop) error {
	if shop.Domain == "" {
		return errors.New("shop domain is required")
	}
	if shop.AccessToken == "" {
		return errors.New("access token is required")
	}

	shop.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(shop); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first backend that has them
func (m *Manager) Retrieve(domain string) (*Shop, error) {
	for _, store := range m.stores {
		if shop, err := store.Retrieve(domain); err == nil && shop != nil {
			return shop, nil
		}
	}
	return nil, fmt.Errorf("credentials not found for shop: %s", domain)
}

// RetrieveDefault gets credentials for the environment shop or the first
// stored one
func (m *Manager) RetrieveDefault() (*Shop, error) {
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if shop, err := envStore.Retrieve(""); err == nil && shop != nil {
			return shop, nil
		}
	}

	shops, err := m.List()
	if err == nil && len(shops) > 0 {
		return shops[0], nil
	}

	return nil, errors.New("no credentials found")
}

// List returns all stored shops across backends
func (m *Manager) List() ([]*Shop, error) {
	shopMap := make(map[string]*Shop)

	for _, store := range m.stores {
		shops, err := store.List()
		if err != nil {
			continue
		}
		for _, shop := range shops {
			if existing, ok := shopMap[shop.Domain]; !ok || shop.LastModified.After(existing.LastModified) {
				shopMap[shop.Domain] = shop
			}
		}
	}

	var result []*Shop
	for _, shop := range shopMap {
		result = append(result, shop)
	}

	return result, nil
}

// Delete removes credentials from all backends
func (m *Manager) Delete(domain string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(domain); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("credentials not found for shop: %s", domain)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "shopsync")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "shopsync")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "shopsync")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "shopsync")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeShop creates a copy of the shop with the token masked, for logging
func SanitizeShop(shop *Shop) *Shop {
	if shop == nil {
		return nil
	}

	return &Shop{
		Domain:       shop.Domain,
		AccessToken:  maskString(shop.AccessToken),
		APIVersion:   shop.APIVersion,
		LocationID:   shop.LocationID,
		LastModified: shop.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
