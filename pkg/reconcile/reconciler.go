// Package reconcile matches local products to the cached remote catalog by
// SKU and drives the API calls that bring the remote side in line.
package reconcile

import (
	"context"
	"time"

	"shopsync/pkg/logger"
	"shopsync/pkg/models"
	"shopsync/pkg/pricing"
	"shopsync/pkg/shopify"
)

// CatalogAPI is the slice of the API client the reconciler drives
type CatalogAPI interface {
	CreateProduct(ctx context.Context, payload *shopify.ProductPayload) (*models.RemoteProduct, error)
	UpdateProduct(ctx context.Context, id int64, payload *shopify.ProductPayload) error
	SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error
}

// DefaultInStockQuantity is the stock level written for an available variant
const DefaultInStockQuantity = 1000

// Reconciler decides create-vs-update-vs-inventory-only per product
type Reconciler struct {
	api             CatalogAPI
	pricing         pricing.Transform
	inStockQuantity int
	now             func() time.Time
	logger          logger.Logger
}

// New creates a Reconciler
func New(api CatalogAPI, transform pricing.Transform, inStockQuantity int, log logger.Logger) *Reconciler {
	if inStockQuantity <= 0 {
		inStockQuantity = DefaultInStockQuantity
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Reconciler{
		api:             api,
		pricing:         transform,
		inStockQuantity: inStockQuantity,
		now:             time.Now,
		logger:          log,
	}
}

// Reconcile matches one local product against the remote snapshot and issues
// the API calls for the decided action. Every failure is converted into the
// returned SyncResult; nothing escapes the product boundary.
func (r *Reconciler) Reconcile(ctx context.Context, local *models.LocalProduct, remote []models.RemoteProduct) models.SyncResult {
	result := models.SyncResult{Handle: local.Handle, Title: local.Title}

	skus := localSKUSet(local)

	counterparts := findCounterparts(remote, skus)
	if len(counterparts) > 1 {
		// the same SKU appearing on several remote products is a data
		// quality condition, not something to silently merge
		r.logger.WarnWithFields("local SKUs match multiple remote products", map[string]interface{}{
			"title":           local.Title,
			"remote_products": len(counterparts),
		})
		result.Outcome = models.OutcomeSkipped
		result.Reason = models.ReasonAmbiguousSKU
		return result
	}

	if len(counterparts) == 1 {
		return r.reconcileExisting(ctx, local, counterparts[0])
	}
	return r.createNew(ctx, local)
}

// reconcileExisting updates inventory for matched variants and, when no new
// variants were introduced locally, replaces the whole remote product.
func (r *Reconciler) reconcileExisting(ctx context.Context, local *models.LocalProduct, remote *models.RemoteProduct) models.SyncResult {
	result := models.SyncResult{Handle: local.Handle, Title: local.Title}

	remoteBySKU := make(map[string]*models.RemoteVariant, len(remote.Variants))
	for i := range remote.Variants {
		remoteBySKU[remote.Variants[i].SKU] = &remote.Variants[i]
	}

	matched := 0
	var inventoryErr error
	for i := range local.Variants {
		variant := &local.Variants[i]
		counterpart, ok := remoteBySKU[variant.SKU]
		if !ok {
			continue
		}
		matched++

		quantity := 0
		if variant.IsAvailable() {
			quantity = r.inStockQuantity
		}
		if err := r.api.SetInventoryLevel(ctx, counterpart.InventoryItemID, quantity); err != nil {
			inventoryErr = err
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"title": local.Title,
				"sku":   variant.SKU,
			}).Error("inventory update failed")
		}
	}

	if matched < len(local.Variants) {
		// a brand-new variant on an existing product needs a manual merge;
		// the inventory updates for the matched subset stand
		r.logger.InfoWithFields("local product introduces new variants, withholding product update", map[string]interface{}{
			"title":   local.Title,
			"matched": matched,
			"total":   len(local.Variants),
		})
		result.Outcome = models.OutcomeInventoryOnly
		result.Reason = models.ReasonNewVariant
		// a failed inventory write on the matched subset stays attributable
		result.Err = inventoryErr
		return result
	}

	payload := r.buildPayload(local)
	if err := r.api.UpdateProduct(ctx, remote.ID, payload); err != nil {
		result.Outcome = models.OutcomeFailed
		result.Reason = "product update failed"
		result.Err = err
		return result
	}

	if inventoryErr != nil {
		result.Outcome = models.OutcomeFailed
		result.Reason = "inventory update failed"
		result.Err = inventoryErr
		return result
	}

	result.Outcome = models.OutcomeUpdated
	return result
}

// createNew creates a remote product and, when the local record carried no
// publish timestamp, issues a follow-up update publishing it now.
func (r *Reconciler) createNew(ctx context.Context, local *models.LocalProduct) models.SyncResult {
	result := models.SyncResult{Handle: local.Handle, Title: local.Title}

	if !anyAvailable(local) {
		result.Outcome = models.OutcomeSkipped
		result.Reason = models.ReasonNoAvailableVariant
		return result
	}

	created, err := r.api.CreateProduct(ctx, r.buildPayload(local))
	if err != nil {
		result.Outcome = models.OutcomeFailed
		result.Reason = "product create failed"
		result.Err = err
		return result
	}

	if parseTimestamp(local.PublishedAt) == "" {
		publish := &shopify.ProductPayload{
			Product: shopify.ProductFields{
				PublishedAt: r.now().Format(time.RFC3339),
			},
		}
		if err := r.api.UpdateProduct(ctx, created.ID, publish); err != nil {
			result.Outcome = models.OutcomeFailed
			result.Reason = "publish update failed"
			result.Err = err
			return result
		}
	}

	result.Outcome = models.OutcomeCreated
	return result
}

func localSKUSet(p *models.LocalProduct) map[string]struct{} {
	skus := make(map[string]struct{}, len(p.Variants))
	for i := range p.Variants {
		if sku := p.Variants[i].SKU; sku != "" {
			skus[sku] = struct{}{}
		}
	}
	return skus
}

// findCounterparts returns every remote product carrying at least one
// variant whose SKU appears in the local set
func findCounterparts(remote []models.RemoteProduct, skus map[string]struct{}) []*models.RemoteProduct {
	var matches []*models.RemoteProduct
	for i := range remote {
		for j := range remote[i].Variants {
			if _, ok := skus[remote[i].Variants[j].SKU]; ok {
				matches = append(matches, &remote[i])
				break
			}
		}
	}
	return matches
}

func anyAvailable(p *models.LocalProduct) bool {
	for i := range p.Variants {
		if p.Variants[i].IsAvailable() {
			return true
		}
	}
	return false
}
