package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// LocalProduct is one scraped product record from a per-brand snapshot file.
// The field names follow the scraper's output format; the set is treated as
// an immutable input once loaded.
type LocalProduct struct {
	Title       string         `json:"title"`
	BodyHTML    string         `json:"body_html"`
	Vendor      string         `json:"vendor"`
	ProductType string         `json:"product_type"`
	Tags        Tags           `json:"tags"`
	Handle      string         `json:"handle"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
	PublishedAt string         `json:"published_at,omitempty"`
	Images      []string       `json:"images,omitempty"`
	Variants    []LocalVariant `json:"variants"`
}

// LocalVariant is one sellable variation of a local product. The SKU is the
// join key against the remote catalog and must be unique within a product.
type LocalVariant struct {
	VariantTitle      string   `json:"variant_title"`
	Price             Price    `json:"price"`
	SKU               string   `json:"sku"`
	Available         *bool    `json:"available"`
	Option1           string   `json:"option1,omitempty"`
	Option2           string   `json:"option2,omitempty"`
	Option3           string   `json:"option3,omitempty"`
	Grams             *int     `json:"grams,omitempty"`
	RequiresShipping  *bool    `json:"requires_shipping,omitempty"`
	Taxable           *bool    `json:"taxable,omitempty"`
	Barcode           string   `json:"barcode,omitempty"`
	Weight            *float64 `json:"weight,omitempty"`
	WeightUnit        string   `json:"weight_unit,omitempty"`
	CompareAtPrice    Price    `json:"compare_at_price,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
	UpdatedAt         string   `json:"updated_at,omitempty"`
	Images            []string `json:"images,omitempty"`
}

// IsAvailable reports the availability flag; a missing flag counts as
// unavailable (and fails validation upstream).
func (v *LocalVariant) IsAvailable() bool {
	return v.Available != nil && *v.Available
}

// Price captures a scraped price, which may arrive as a JSON string
// ("19.95", "€45,00") or a bare number. The raw text is kept as-is and
// resolved once by the price transform; call sites never branch on the
// original JSON type.
type Price struct {
	Raw string
}

// UnmarshalJSON accepts both string and numeric price representations
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.Raw = s
		return nil
	}
	p.Raw = string(data)
	return nil
}

// MarshalJSON writes the price back as a string
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Raw)
}

func (p Price) String() string {
	return p.Raw
}

// IsZero reports whether no price was present in the input
func (p Price) IsZero() bool {
	return strings.TrimSpace(p.Raw) == ""
}

// Tags accepts both the storefront list form and the admin comma-string form
type Tags []string

// UnmarshalJSON accepts ["a","b"] as well as "a, b"
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			*t = append(*t, trimmed)
		}
	}
	return nil
}

// MarshalJSON writes tags in the list form
func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(t))
}

// RemoteProduct is the API's representation of a catalog product. Remote
// records are never mutated locally except through API calls.
type RemoteProduct struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	BodyHTML    string          `json:"body_html"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	Handle      string          `json:"handle"`
	PublishedAt string          `json:"published_at,omitempty"`
	Variants    []RemoteVariant `json:"variants"`
}

// RemoteVariant carries the inventory_item_id, the only stable handle for
// mutating stock level, plus the SKU used as the join key.
type RemoteVariant struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"product_id"`
	Title           string `json:"title"`
	SKU             string `json:"sku"`
	Price           string `json:"price"`
	InventoryItemID int64  `json:"inventory_item_id"`
}

// Outcome classifies the result of reconciling one local product
type Outcome string

const (
	OutcomeCreated       Outcome = "created"
	OutcomeUpdated       Outcome = "updated"
	OutcomeInventoryOnly Outcome = "inventory-only"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeFailed        Outcome = "failed"
)

// Skip and failure reasons surfaced in SyncResults
const (
	ReasonAmbiguousSKU       = "ambiguous-sku"
	ReasonNewVariant         = "new-variant-requires-manual-merge"
	ReasonNoAvailableVariant = "no-available-variant"
)

// SyncResult is the per-product outcome of a reconciliation pass
type SyncResult struct {
	Handle  string
	Title   string
	Outcome Outcome
	Reason  string
	Err     error
}

// Succeeded reports whether the product was fully written remotely.
// An inventory-only outcome is a partial write (the product update was
// withheld) and counts toward the skipped total, not the succeeded one.
func (r SyncResult) Succeeded() bool {
	switch r.Outcome {
	case OutcomeCreated, OutcomeUpdated:
		return true
	}
	return false
}

// Batch is one brand's worth of local products, processed as a unit
type Batch struct {
	Brand    string
	Products []LocalProduct
	// Partial marks a batch whose snapshot contained records that could
	// not be decoded; their SKUs are unknown, not absent.
	Partial bool
}

// RunSummary aggregates per-product outcomes across a whole run
type RunSummary struct {
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
	Disabled  int
	Elapsed   time.Duration
}
