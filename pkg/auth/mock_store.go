package auth

import (
	"sync"
)

// MockStore implements CredentialStore for testing
type MockStore struct {
	shops map[string]*Shop
	mu    sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		shops: make(map[string]*Shop),
	}
}

// Store saves shop credentials to the mock store
func (m *MockStore) Store(shop *Shop) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if shop == nil || shop.Domain == "" {
		return ErrInvalidCredentials
	}

	shopCopy := *shop
	m.shops[shop.Domain] = &shopCopy

	return nil
}

// Retrieve gets shop credentials from the mock store
func (m *MockStore) Retrieve(domain string) (*Shop, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if domain == "" {
		return nil, ErrInvalidCredentials
	}

	shop, exists := m.shops[domain]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	shopCopy := *shop
	return &shopCopy, nil
}

// List returns all stored shops from the mock store
func (m *MockStore) List() ([]*Shop, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var shops []*Shop
	for _, shop := range m.shops {
		shopCopy := *shop
		shops = append(shops, &shopCopy)
	}

	return shops, nil
}

// Delete removes shop credentials from the mock store
func (m *MockStore) Delete(domain string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if domain == "" {
		return ErrInvalidCredentials
	}

	if _, exists := m.shops[domain]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.shops, domain)
	return nil
}

// Exists checks if shop credentials exist in the mock store
func (m *MockStore) Exists(domain string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.shops[domain]
	return exists
}

// Count returns the number of shops in the mock store
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.shops)
}

// NewMockManager creates a Manager with a mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	manager := &Manager{
		stores: []CredentialStore{mockStore},
	}
	return manager, mockStore
}

// NewMockManagerWithStores creates a Manager with specific stores for testing
func NewMockManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{
		stores: stores,
	}
}
