package auth

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "shopsync"
	keyringPrefix  = "shop_"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keyring-based credential store, failing when no
// keychain backend is reachable
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves shop credentials to the system keychain
func (k *KeyringStore) Store(shop *Shop) error {
	if shop == nil || shop.Domain == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(shop)
	if err != nil {
		return fmt.Errorf("failed to marshal shop: %w", err)
	}

	key := keyringPrefix + shop.Domain
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets shop credentials from the system keychain
func (k *KeyringStore) Retrieve(domain string) (*Shop, error) {
	if domain == "" {
		return nil, ErrInvalidCredentials
	}

	key := keyringPrefix + domain
	data, err := keyring.Get(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var shop Shop
	if err := json.Unmarshal([]byte(data), &shop); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shop: %w", err)
	}

	return &shop, nil
}

// List returns all stored shops from the keychain. go-keyring cannot
// enumerate keys, so this always returns empty.
func (k *KeyringStore) List() ([]*Shop, error) {
	return []*Shop{}, nil
}

// Delete removes shop credentials from the system keychain
func (k *KeyringStore) Delete(domain string) error {
	if domain == "" {
		return ErrInvalidCredentials
	}

	key := keyringPrefix + domain
	err := keyring.Delete(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// Exists checks if shop credentials exist in the keychain
func (k *KeyringStore) Exists(domain string) bool {
	if domain == "" {
		return false
	}

	key := keyringPrefix + domain
	_, err := keyring.Get(keyringService, key)
	return err == nil
}
