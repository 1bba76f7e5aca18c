package shopify

import "shopsync/pkg/models"

// ProductPayload is the envelope for product create and update calls
type ProductPayload struct {
	Product ProductFields `json:"product"`
}

// ProductFields is the wire shape of a product write
type ProductFields struct {
	ID          int64           `json:"id,omitempty"`
	Title       string          `json:"title,omitempty"`
	BodyHTML    string          `json:"body_html,omitempty"`
	Vendor      string          `json:"vendor,omitempty"`
	ProductType string          `json:"product_type,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Handle      string          `json:"handle,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
	PublishedAt string          `json:"published_at,omitempty"`
	Options     []ProductOption `json:"options,omitempty"`
	Variants    []VariantFields `json:"variants,omitempty"`
	Images      []ProductImage  `json:"images,omitempty"`
}

// ProductOption names a variant option axis
type ProductOption struct {
	Name string `json:"name"`
}

// ProductImage references one product image by source URL
type ProductImage struct {
	Src string `json:"src"`
}

// VariantFields is the wire shape of a variant write
type VariantFields struct {
	Option1             string   `json:"option1,omitempty"`
	Price               string   `json:"price"`
	SKU                 string   `json:"sku"`
	InventoryQuantity   int      `json:"inventory_quantity"`
	InventoryManagement string   `json:"inventory_management,omitempty"`
	InventoryPolicy     string   `json:"inventory_policy,omitempty"`
	Barcode             string   `json:"barcode,omitempty"`
	Weight              *float64 `json:"weight,omitempty"`
	WeightUnit          string   `json:"weight_unit,omitempty"`
	Taxable             *bool    `json:"taxable,omitempty"`
	CompareAtPrice      string   `json:"compare_at_price,omitempty"`
}

// inventoryLevelPayload sets the stock level for one inventory item at a location
type inventoryLevelPayload struct {
	LocationID      string `json:"location_id"`
	InventoryItemID int64  `json:"inventory_item_id"`
	Available       int    `json:"available"`
}

// productListResponse is the wire shape of the paginated product listing
type productListResponse struct {
	Products []models.RemoteProduct `json:"products"`
}

// productEnvelope is the wire shape of a single-product response
type productEnvelope struct {
	Product models.RemoteProduct `json:"product"`
}
