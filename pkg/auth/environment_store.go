package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Useful for CI and cron jobs where no keychain exists.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(shop *Shop) error {
	return ErrStoreUnavailable
}

// Retrieve gets shop credentials from environment variables
func (e *EnvironmentStore) Retrieve(domain string) (*Shop, error) {
	envDomain := os.Getenv("SHOPSYNC_SHOP_URL")
	token := os.Getenv("SHOPSYNC_ACCESS_TOKEN")

	if envDomain == "" || token == "" {
		return nil, ErrCredentialsNotFound
	}
	if domain != "" && domain != envDomain {
		return nil, ErrCredentialsNotFound
	}

	return &Shop{
		Domain:       envDomain,
		AccessToken:  token,
		APIVersion:   os.Getenv("SHOPSYNC_API_VERSION"),
		LocationID:   os.Getenv("SHOPSYNC_LOCATION_ID"),
		LastModified: time.Now(),
	}, nil
}

// List returns a single shop if environment variables are set
func (e *EnvironmentStore) List() ([]*Shop, error) {
	shop, err := e.Retrieve("")
	if err != nil {
		return []*Shop{}, nil
	}
	return []*Shop{shop}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(domain string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(domain string) bool {
	return os.Getenv("SHOPSYNC_SHOP_URL") != "" && os.Getenv("SHOPSYNC_ACCESS_TOKEN") != ""
}
