package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShop(domain string) *Shop {
	return &Shop{
		Domain:      domain,
		AccessToken: "shpat_1234567890abcdef",
		LocationID:  "77",
	}
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager, _ := NewMockManager()

	shop := testShop("example.myshopify.com")
	require.NoError(t, manager.Store(shop))

	got, err := manager.Retrieve("example.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, shop.AccessToken, got.AccessToken)
	assert.Equal(t, shop.LocationID, got.LocationID)
	assert.False(t, got.LastModified.IsZero())
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	assert.Error(t, manager.Store(&Shop{AccessToken: "token"}))
	assert.Error(t, manager.Store(&Shop{Domain: "example.myshopify.com"}))
}

func TestManagerRetrieveNotFound(t *testing.T) {
	manager, _ := NewMockManager()

	_, err := manager.Retrieve("unknown.myshopify.com")
	assert.Error(t, err)
}

func TestManagerFallbackChain(t *testing.T) {
	failing := NewMockStore()
	failing.StoreError = ErrStoreUnavailable
	failing.RetrieveError = ErrStoreUnavailable

	working := NewMockStore()
	manager := NewMockManagerWithStores(failing, working)

	shop := testShop("example.myshopify.com")
	require.NoError(t, manager.Store(shop))

	// stored in the second backend despite the first failing
	assert.Equal(t, 1, working.Count())

	got, err := manager.Retrieve("example.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, shop.AccessToken, got.AccessToken)
}

func TestManagerDelete(t *testing.T) {
	manager, store := NewMockManager()

	require.NoError(t, manager.Store(testShop("example.myshopify.com")))
	require.NoError(t, manager.Delete("example.myshopify.com"))
	assert.Equal(t, 0, store.Count())

	assert.Error(t, manager.Delete("example.myshopify.com"))
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()
	manager := NewMockManagerWithStores(older, newer)

	old := testShop("example.myshopify.com")
	old.AccessToken = "old-token"
	old.LastModified = time.Now().Add(-time.Hour)
	require.NoError(t, older.Store(old))

	current := testShop("example.myshopify.com")
	current.AccessToken = "new-token"
	current.LastModified = time.Now()
	require.NoError(t, newer.Store(current))

	shops, err := manager.List()
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "new-token", shops[0].AccessToken)
}

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("SHOPSYNC_SHOP_URL", "example.myshopify.com")
	t.Setenv("SHOPSYNC_ACCESS_TOKEN", "shpat_env")
	t.Setenv("SHOPSYNC_LOCATION_ID", "99")

	store := NewEnvironmentStore()
	shop, err := store.Retrieve("")
	require.NoError(t, err)

	assert.Equal(t, "example.myshopify.com", shop.Domain)
	assert.Equal(t, "shpat_env", shop.AccessToken)
	assert.Equal(t, "99", shop.LocationID)
}

func TestEnvironmentStoreMissingVars(t *testing.T) {
	t.Setenv("SHOPSYNC_SHOP_URL", "")
	t.Setenv("SHOPSYNC_ACCESS_TOKEN", "")

	store := NewEnvironmentStore()
	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEnvironmentStoreReadOnly(t *testing.T) {
	store := NewEnvironmentStore()
	assert.ErrorIs(t, store.Store(testShop("x")), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("x"), ErrStoreUnavailable)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("SHOPSYNC_PASSPHRASE", "test-passphrase")

	dir := t.TempDir()
	store, err := NewEncryptedFileStore(dir + "/credentials.enc")
	require.NoError(t, err)

	shop := testShop("example.myshopify.com")
	require.NoError(t, store.Store(shop))

	got, err := store.Retrieve("example.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, shop.AccessToken, got.AccessToken)

	shops, err := store.List()
	require.NoError(t, err)
	assert.Len(t, shops, 1)

	require.NoError(t, store.Delete("example.myshopify.com"))
	_, err = store.Retrieve("example.myshopify.com")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/credentials.enc"

	t.Setenv("SHOPSYNC_PASSPHRASE", "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(testShop("example.myshopify.com")))

	t.Setenv("SHOPSYNC_PASSPHRASE", "second")
	store2, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = store2.Retrieve("example.myshopify.com")
	assert.Error(t, err)
}

func TestShopURL(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"example.myshopify.com", "https://example.myshopify.com"},
		{"https://example.myshopify.com", "https://example.myshopify.com"},
		{"https://example.myshopify.com/", "https://example.myshopify.com"},
	}

	for _, tt := range tests {
		shop := &Shop{Domain: tt.domain}
		assert.Equal(t, tt.want, shop.URL())
	}
}

func TestSanitizeShop(t *testing.T) {
	shop := testShop("example.myshopify.com")
	sanitized := SanitizeShop(shop)

	assert.Equal(t, shop.Domain, sanitized.Domain)
	assert.NotEqual(t, shop.AccessToken, sanitized.AccessToken)
	assert.Contains(t, sanitized.AccessToken, "...")

	assert.Nil(t, SanitizeShop(nil))
}

func TestMaskString(t *testing.T) {
	assert.Equal(t, "********", maskString("short"))
	assert.Equal(t, "shpa...cdef", maskString("shpat_1234567890abcdef"))
}
