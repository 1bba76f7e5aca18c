// Package validate rejects malformed or policy-excluded local products
// before they reach the network.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"shopsync/pkg/models"
)

// Validation errors for malformed records
var (
	ErrMissingTitle   = errors.New("product has no title")
	ErrNoVariants     = errors.New("product has no variants")
	ErrExcludedVendor = errors.New("vendor is excluded by policy")
	ErrNoImages       = errors.New("no variant carries an image URL")
)

// Validator is a pure predicate over local products. It has no side effects
// beyond the reason carried in the returned error.
type Validator struct {
	// ExcludedVendors lists vendors whose products are never synced
	ExcludedVendors []string
	// RequireImages rejects products where no variant carries an image URL
	RequireImages bool
}

// Validate returns nil for a syncable product, or the reason it is rejected
func (v *Validator) Validate(p *models.LocalProduct) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrMissingTitle
	}
	if len(p.Variants) == 0 {
		return ErrNoVariants
	}

	for i := range p.Variants {
		variant := &p.Variants[i]
		if strings.TrimSpace(variant.SKU) == "" {
			return fmt.Errorf("variant %d is missing a sku", i)
		}
		if variant.Price.IsZero() {
			return fmt.Errorf("variant %q is missing a price", variant.SKU)
		}
		if variant.Available == nil {
			return fmt.Errorf("variant %q is missing the availability flag", variant.SKU)
		}
	}

	for _, excluded := range v.ExcludedVendors {
		if strings.EqualFold(strings.TrimSpace(p.Vendor), excluded) {
			return ErrExcludedVendor
		}
	}

	if v.RequireImages && !hasAnyImage(p) {
		return ErrNoImages
	}

	return nil
}

func hasAnyImage(p *models.LocalProduct) bool {
	if len(p.Images) > 0 {
		return true
	}
	for i := range p.Variants {
		if len(p.Variants[i].Images) > 0 {
			return true
		}
	}
	return false
}
