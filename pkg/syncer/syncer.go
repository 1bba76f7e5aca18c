// Package syncer orchestrates a full reconciliation run: per-brand batches
// through the worker pool, cache refreshes between batches, and the final
// stale-item deactivation sweep.
package syncer

import (
	"context"
	"fmt"
	"time"

	"shopsync/internal/worker"
	"shopsync/pkg/logger"
	"shopsync/pkg/models"
	"shopsync/pkg/validate"
)

// RemoteCatalog serves the cached remote product snapshot
type RemoteCatalog interface {
	Get(ctx context.Context, force bool) ([]models.RemoteProduct, error)
}

// ProductReconciler decides and drives the per-product API action
type ProductReconciler interface {
	Reconcile(ctx context.Context, local *models.LocalProduct, remote []models.RemoteProduct) models.SyncResult
}

// InventoryAPI is the slice of the API client used by the stale sweep
type InventoryAPI interface {
	SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error
}

// Syncer runs batches sequentially so that the cache refresh between
// batches keeps later batches aware of earlier writes
type Syncer struct {
	catalog    RemoteCatalog
	reconciler ProductReconciler
	inventory  InventoryAPI
	validator  *validate.Validator
	workers    int
	logger     logger.Logger
}

// New creates a Syncer
func New(catalog RemoteCatalog, reconciler ProductReconciler, inventory InventoryAPI, validator *validate.Validator, workers int, log logger.Logger) *Syncer {
	if workers <= 0 {
		workers = 2
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Syncer{
		catalog:    catalog,
		reconciler: reconciler,
		inventory:  inventory,
		validator:  validator,
		workers:    workers,
		logger:     log,
	}
}

// Run processes every batch and performs the end-of-run stale sweep. Only a
// cache bootstrap failure aborts the run; every other failure is converted
// into a per-product or per-variant result and accounted for in the summary.
//
// inputComplete reports whether every requested snapshot file loaded. The
// stale sweep only runs when the local input set is complete: a SKU missing
// from a partially loaded input is unknown, not absent, and zeroing it
// would punish products that are still listed locally.
func (s *Syncer) Run(ctx context.Context, batches []models.Batch, inputComplete bool) (*models.RunSummary, error) {
	start := time.Now()
	summary := &models.RunSummary{}
	seenSKUs := make(map[string]struct{})

	for _, batch := range batches {
		if batch.Partial {
			inputComplete = false
		}
		if err := s.runBatch(ctx, batch, summary, seenSKUs); err != nil {
			return nil, err
		}
	}

	if inputComplete {
		disabled, err := s.disableStale(ctx, seenSKUs)
		if err != nil {
			return nil, err
		}
		summary.Disabled = disabled
	} else {
		s.logger.Warn("input set incomplete, skipping stale item sweep")
	}
	summary.Elapsed = time.Since(start)

	s.logger.InfoWithFields("run complete", map[string]interface{}{
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"disabled":  summary.Disabled,
		"elapsed":   summary.Elapsed,
	})

	return summary, nil
}

func (s *Syncer) runBatch(ctx context.Context, batch models.Batch, summary *models.RunSummary, seenSKUs map[string]struct{}) error {
	s.logger.InfoWithFields("processing batch", map[string]interface{}{
		"brand":    batch.Brand,
		"products": len(batch.Products),
	})

	remote, err := s.catalog.Get(ctx, false)
	if err != nil {
		// no fallback data exists on a cold cache, so the run cannot continue
		return fmt.Errorf("remote catalog unavailable for batch %q: %w", batch.Brand, err)
	}

	pool := worker.NewPool(ctx, s.workers, func(ctx context.Context, job worker.Job) models.SyncResult {
		if verr := s.validator.Validate(job.Product); verr != nil {
			s.logger.WarnWithFields("product rejected by validation", map[string]interface{}{
				"brand": job.Brand,
				"title": job.Product.Title,
				"error": verr.Error(),
			})
			return models.SyncResult{
				Handle:  job.Product.Handle,
				Title:   job.Product.Title,
				Outcome: models.OutcomeSkipped,
				Reason:  verr.Error(),
			}
		}
		return s.reconciler.Reconcile(ctx, job.Product, remote)
	}, s.logger)
	pool.Start()

	done := make(chan struct{})
	batchSucceeded := 0
	go func() {
		defer close(done)
		for result := range pool.Results() {
			summary.Processed++
			switch {
			case result.Sync.Succeeded():
				summary.Succeeded++
				batchSucceeded++
			case result.Sync.Outcome == models.OutcomeFailed || result.Sync.Err != nil:
				// partial writes carry their error alongside a non-failed
				// outcome; they still count as failures
				summary.Failed++
				s.logger.ErrorWithFields("product sync failed", map[string]interface{}{
					"brand":  result.Job.Brand,
					"title":  result.Sync.Title,
					"reason": result.Sync.Reason,
					"error":  errString(result.Sync.Err),
				})
			default:
				summary.Skipped++
			}
		}
	}()

	var submitErr error
	for i := range batch.Products {
		product := &batch.Products[i]
		for j := range product.Variants {
			if sku := product.Variants[j].SKU; sku != "" {
				seenSKUs[sku] = struct{}{}
			}
		}
		if err := pool.Submit(worker.Job{Brand: batch.Brand, Product: product}); err != nil {
			submitErr = err
			break
		}
	}

	// the pool is stopped and the collector drained even when a submit
	// failed, so no workers or results outlive the batch
	pool.Stop()
	<-done

	if submitErr != nil {
		return submitErr
	}

	// the next batch must observe this batch's writes
	if _, err := s.catalog.Get(ctx, true); err != nil {
		s.logger.WithError(err).Warn("post-batch cache refresh failed")
	}

	s.logger.InfoWithFields("batch complete", map[string]interface{}{
		"brand":     batch.Brand,
		"succeeded": batchSucceeded,
		"products":  len(batch.Products),
	})

	return nil
}

// disableStale sets inventory to zero for every remote variant whose SKU
// appeared in no local batch
func (s *Syncer) disableStale(ctx context.Context, seenSKUs map[string]struct{}) (int, error) {
	remote, err := s.catalog.Get(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("remote catalog unavailable for stale sweep: %w", err)
	}

	disabled := 0
	for i := range remote {
		for j := range remote[i].Variants {
			variant := &remote[i].Variants[j]
			if variant.SKU == "" {
				continue
			}
			if _, ok := seenSKUs[variant.SKU]; ok {
				continue
			}

			if err := s.inventory.SetInventoryLevel(ctx, variant.InventoryItemID, 0); err != nil {
				s.logger.WithError(err).WithFields(map[string]interface{}{
					"sku":     variant.SKU,
					"product": remote[i].Title,
				}).Error("failed to disable stale variant")
				continue
			}

			disabled++
			s.logger.DebugWithFields("stale variant disabled", map[string]interface{}{
				"sku":     variant.SKU,
				"product": remote[i].Title,
			})
		}
	}

	return disabled, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
