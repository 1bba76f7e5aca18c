package syncer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/pkg/logger"
	"shopsync/pkg/models"
	"shopsync/pkg/validate"
)

// fakeCatalog serves a fixed remote snapshot and records refreshes
type fakeCatalog struct {
	mu       sync.Mutex
	products []models.RemoteProduct
	getErr   error
	calls    []bool // the force flag of every Get
}

func (c *fakeCatalog) Get(ctx context.Context, force bool) ([]models.RemoteProduct, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, force)
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.products, nil
}

func (c *fakeCatalog) forcedCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, forced := range c.calls {
		if forced {
			n++
		}
	}
	return n
}

// fakeReconciler returns a canned outcome per product title
type fakeReconciler struct {
	mu       sync.Mutex
	outcomes map[string]models.SyncResult
	seen     []string
}

func (r *fakeReconciler) Reconcile(ctx context.Context, local *models.LocalProduct, remote []models.RemoteProduct) models.SyncResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, local.Title)
	if result, ok := r.outcomes[local.Title]; ok {
		return result
	}
	return models.SyncResult{Title: local.Title, Outcome: models.OutcomeUpdated}
}

// fakeInventory records stale-sweep zeroing calls
type fakeInventory struct {
	mu       sync.Mutex
	zeroed   []int64
	setErrOn int64
}

func (f *fakeInventory) SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErrOn != 0 && f.setErrOn == inventoryItemID {
		return errors.New("inventory endpoint down")
	}
	if available == 0 {
		f.zeroed = append(f.zeroed, inventoryItemID)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

func product(title, sku string) models.LocalProduct {
	return models.LocalProduct{
		Title:  title,
		Handle: title,
		Variants: []models.LocalVariant{
			{SKU: sku, Price: models.Price{Raw: "10.00"}, Available: boolPtr(true)},
		},
	}
}

func newTestSyncer(catalog *fakeCatalog, reconciler *fakeReconciler, inventory *fakeInventory) *Syncer {
	return New(catalog, reconciler, inventory, &validate.Validator{}, 2, logger.NewTestLogger())
}

func TestRunProcessesAllBatches(t *testing.T) {
	catalog := &fakeCatalog{}
	reconciler := &fakeReconciler{}
	inventory := &fakeInventory{}
	s := newTestSyncer(catalog, reconciler, inventory)

	batches := []models.Batch{
		{Brand: "brand-a", Products: []models.LocalProduct{product("a1", "A1"), product("a2", "A2")}},
		{Brand: "brand-b", Products: []models.LocalProduct{product("b1", "B1")}},
	}

	summary, err := s.Run(context.Background(), batches, true)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, reconciler.seen, 3)
}

func TestRunAccountsOutcomes(t *testing.T) {
	catalog := &fakeCatalog{}
	reconciler := &fakeReconciler{outcomes: map[string]models.SyncResult{
		"failing":   {Title: "failing", Outcome: models.OutcomeFailed, Err: errors.New("boom")},
		"skipping":  {Title: "skipping", Outcome: models.OutcomeSkipped, Reason: models.ReasonAmbiguousSKU},
		"inventory": {Title: "inventory", Outcome: models.OutcomeInventoryOnly, Reason: models.ReasonNewVariant},
		"partial":   {Title: "partial", Outcome: models.OutcomeInventoryOnly, Reason: models.ReasonNewVariant, Err: errors.New("inventory endpoint down")},
	}}
	inventory := &fakeInventory{}
	s := newTestSyncer(catalog, reconciler, inventory)

	batches := []models.Batch{{Brand: "brand", Products: []models.LocalProduct{
		product("ok", "OK-1"),
		product("failing", "F-1"),
		product("skipping", "S-1"),
		product("inventory", "I-1"),
		product("partial", "P-1"),
	}}}

	summary, err := s.Run(context.Background(), batches, true)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 1, summary.Succeeded)
	// an inventory-only result carrying an error counts as a failure
	assert.Equal(t, 2, summary.Failed)
	// both skipped and clean inventory-only land in the skipped total
	assert.Equal(t, 2, summary.Skipped)
}

func TestRunValidationRejectsBeforeReconcile(t *testing.T) {
	catalog := &fakeCatalog{}
	reconciler := &fakeReconciler{}
	inventory := &fakeInventory{}
	s := newTestSyncer(catalog, reconciler, inventory)

	bad := product("no-price", "NP-1")
	bad.Variants[0].Price = models.Price{}

	summary, err := s.Run(context.Background(), []models.Batch{
		{Brand: "brand", Products: []models.LocalProduct{bad}},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, reconciler.seen)
}

func TestRunAbortsOnColdCacheFailure(t *testing.T) {
	catalog := &fakeCatalog{getErr: errors.New("upstream down")}
	s := newTestSyncer(catalog, &fakeReconciler{}, &fakeInventory{})

	_, err := s.Run(context.Background(), []models.Batch{
		{Brand: "brand", Products: []models.LocalProduct{product("a", "A-1")}},
	}, true)
	assert.Error(t, err)
}

func TestRunForcesRefreshBetweenBatches(t *testing.T) {
	catalog := &fakeCatalog{}
	s := newTestSyncer(catalog, &fakeReconciler{}, &fakeInventory{})

	batches := []models.Batch{
		{Brand: "a", Products: []models.LocalProduct{product("a1", "A1")}},
		{Brand: "b", Products: []models.LocalProduct{product("b1", "B1")}},
	}

	_, err := s.Run(context.Background(), batches, true)
	require.NoError(t, err)

	// one forced refresh per batch plus one for the stale sweep
	assert.Equal(t, 3, catalog.forcedCalls())
}

func TestRunDisablesStaleVariants(t *testing.T) {
	catalog := &fakeCatalog{products: []models.RemoteProduct{
		{ID: 1, Title: "kept", Variants: []models.RemoteVariant{
			{SKU: "KEEP-1", InventoryItemID: 11},
		}},
		{ID: 2, Title: "stale", Variants: []models.RemoteVariant{
			{SKU: "GONE-1", InventoryItemID: 21},
			{SKU: "GONE-2", InventoryItemID: 22},
			{SKU: "", InventoryItemID: 23},
		}},
	}}
	inventory := &fakeInventory{}
	s := newTestSyncer(catalog, &fakeReconciler{}, inventory)

	summary, err := s.Run(context.Background(), []models.Batch{
		{Brand: "brand", Products: []models.LocalProduct{product("kept", "KEEP-1")}},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Disabled)
	assert.ElementsMatch(t, []int64{21, 22}, inventory.zeroed)
}

func TestRunStaleSweepContinuesPastErrors(t *testing.T) {
	catalog := &fakeCatalog{products: []models.RemoteProduct{
		{ID: 1, Variants: []models.RemoteVariant{
			{SKU: "GONE-1", InventoryItemID: 21},
			{SKU: "GONE-2", InventoryItemID: 22},
		}},
	}}
	inventory := &fakeInventory{setErrOn: 21}
	s := newTestSyncer(catalog, &fakeReconciler{}, inventory)

	summary, err := s.Run(context.Background(), []models.Batch{
		{Brand: "brand", Products: []models.LocalProduct{product("x", "X-1")}},
	}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Disabled)
	assert.Equal(t, []int64{22}, inventory.zeroed)
}

func TestRunSkipsStaleSweepOnIncompleteInput(t *testing.T) {
	staleRemote := []models.RemoteProduct{
		{ID: 1, Title: "stale", Variants: []models.RemoteVariant{
			{SKU: "GONE-1", InventoryItemID: 21},
		}},
	}

	t.Run("snapshot file failed to load", func(t *testing.T) {
		catalog := &fakeCatalog{products: staleRemote}
		inventory := &fakeInventory{}
		s := newTestSyncer(catalog, &fakeReconciler{}, inventory)

		summary, err := s.Run(context.Background(), []models.Batch{
			{Brand: "brand", Products: []models.LocalProduct{product("kept", "KEEP-1")}},
		}, false)
		require.NoError(t, err)

		// GONE-1 may live in the unloaded file; nothing gets zeroed
		assert.Equal(t, 0, summary.Disabled)
		assert.Empty(t, inventory.zeroed)
	})

	t.Run("batch dropped malformed records", func(t *testing.T) {
		catalog := &fakeCatalog{products: staleRemote}
		inventory := &fakeInventory{}
		s := newTestSyncer(catalog, &fakeReconciler{}, inventory)

		summary, err := s.Run(context.Background(), []models.Batch{
			{Brand: "brand", Products: []models.LocalProduct{product("kept", "KEEP-1")}, Partial: true},
		}, true)
		require.NoError(t, err)

		assert.Equal(t, 0, summary.Disabled)
		assert.Empty(t, inventory.zeroed)
	})
}

// cancellingReconciler cancels the run context on its first call
type cancellingReconciler struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (r *cancellingReconciler) Reconcile(ctx context.Context, local *models.LocalProduct, remote []models.RemoteProduct) models.SyncResult {
	r.once.Do(r.cancel)
	return models.SyncResult{Title: local.Title, Outcome: models.OutcomeUpdated}
}

func TestRunShutsDownPoolWhenSubmitFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog := &fakeCatalog{}
	reconciler := &cancellingReconciler{cancel: cancel}
	s := New(catalog, reconciler, &fakeInventory{}, &validate.Validator{}, 1, logger.NewTestLogger())

	// enough products that submission outlives the cancelled worker
	products := make([]models.LocalProduct, 16)
	for i := range products {
		products[i] = product(fmt.Sprintf("p%d", i), fmt.Sprintf("P-%d", i))
	}

	before := runtime.NumGoroutine()
	_, err := s.Run(ctx, []models.Batch{{Brand: "brand", Products: products}}, true)
	require.Error(t, err)

	// workers and the result collector must have exited
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}
