package reconcile

import (
	"time"

	"shopsync/pkg/models"
	"shopsync/pkg/shopify"
)

// optionName is the single option axis carried by scraped variants
const optionName = "Size"

// timestampLayouts covers the ISO-8601 shapes seen in scraped snapshots
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// buildPayload assembles the product create/update body from a local record:
// validated timestamps, metadata passthrough, a de-duplicated image set and
// variants with recomputed listing prices.
func (r *Reconciler) buildPayload(local *models.LocalProduct) *shopify.ProductPayload {
	fields := shopify.ProductFields{
		Title:       local.Title,
		BodyHTML:    local.BodyHTML,
		Vendor:      local.Vendor,
		ProductType: local.ProductType,
		Tags:        local.Tags,
		Handle:      local.Handle,
		Options:     []shopify.ProductOption{{Name: optionName}},
	}

	if ts := parseTimestamp(local.PublishedAt); ts != "" {
		fields.PublishedAt = ts
	} else if local.PublishedAt != "" {
		r.logger.WarnWithFields("invalid published_at, omitting", map[string]interface{}{
			"title": local.Title,
			"value": local.PublishedAt,
		})
	}
	if ts := parseTimestamp(local.CreatedAt); ts != "" {
		fields.CreatedAt = ts
	}
	if ts := parseTimestamp(local.UpdatedAt); ts != "" {
		fields.UpdatedAt = ts
	}

	fields.Images = collectImages(local)

	for i := range local.Variants {
		variant := &local.Variants[i]

		price, ok := r.pricing.Adjust(variant.Price.Raw)
		if !ok {
			r.logger.WarnWithFields("price not adjustable, passing through", map[string]interface{}{
				"title": local.Title,
				"sku":   variant.SKU,
				"price": variant.Price.Raw,
			})
		}

		quantity := 0
		if variant.IsAvailable() {
			quantity = r.inStockQuantity
		}

		vf := shopify.VariantFields{
			Option1:             variant.VariantTitle,
			Price:               price,
			SKU:                 variant.SKU,
			InventoryQuantity:   quantity,
			InventoryManagement: "shopify",
			InventoryPolicy:     "deny",
			Barcode:             variant.Barcode,
			Weight:              variant.Weight,
			WeightUnit:          variant.WeightUnit,
			Taxable:             variant.Taxable,
		}
		// compare-at is the strike-through source price, passed through unadjusted
		if !variant.CompareAtPrice.IsZero() {
			vf.CompareAtPrice = variant.CompareAtPrice.Raw
		}

		fields.Variants = append(fields.Variants, vf)
	}

	return &shopify.ProductPayload{Product: fields}
}

// collectImages unions the product-level and per-variant image URLs,
// de-duplicated in first-seen order
func collectImages(local *models.LocalProduct) []shopify.ProductImage {
	seen := make(map[string]struct{})
	var images []shopify.ProductImage

	add := func(src string) {
		if src == "" {
			return
		}
		if _, ok := seen[src]; ok {
			return
		}
		seen[src] = struct{}{}
		images = append(images, shopify.ProductImage{Src: src})
	}

	for _, src := range local.Images {
		add(src)
	}
	for i := range local.Variants {
		for _, src := range local.Variants[i].Images {
			add(src)
		}
	}

	return images
}

// parseTimestamp normalizes an ISO-8601 timestamp to RFC 3339, or returns ""
// when the input is absent or malformed
func parseTimestamp(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format(time.RFC3339)
		}
	}
	return ""
}
