package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	errs "shopsync/pkg/errors"
	"shopsync/pkg/models"
)

// ListProductsPage fetches one page of the product listing and returns the
// next-page URL extracted from the Link header, or "" when this is the last
// page.
func (c *Client) ListProductsPage(ctx context.Context, pageURL string) ([]models.RemoteProduct, string, error) {
	resp, err := c.Do(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", err
	}

	var list productListResponse
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, "", &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "failed to parse product listing: " + err.Error(),
			Code:    resp.StatusCode,
		}
	}

	return list.Products, nextPageURL(resp.Header), nil
}

// CreateProduct creates a new remote product and returns the created record
func (c *Client) CreateProduct(ctx context.Context, payload *ProductPayload) (*models.RemoteProduct, error) {
	resp, err := c.Do(ctx, http.MethodPost, c.createProductURL(), payload)
	if err != nil {
		return nil, err
	}

	var envelope productEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "failed to parse created product: " + err.Error(),
			Code:    resp.StatusCode,
		}
	}

	return &envelope.Product, nil
}

// UpdateProduct replaces an existing remote product by id
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload *ProductPayload) error {
	payload.Product.ID = id
	_, err := c.Do(ctx, http.MethodPut, c.productURL(id), payload)
	return err
}

// SetInventoryLevel sets the absolute stock level for one inventory item at
// the configured location
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error {
	payload := inventoryLevelPayload{
		LocationID:      c.locationID,
		InventoryItemID: inventoryItemID,
		Available:       available,
	}
	_, err := c.Do(ctx, http.MethodPost, c.inventoryURL(), payload)
	return err
}

// nextPageURL extracts the rel="next" link relation from a listing response.
// The header looks like:
//
//	<https://shop/admin/api/2024-01/products.json?page_info=abc>; rel="next"
func nextPageURL(header http.Header) string {
	links := header.Get("Link")
	if links == "" {
		return ""
	}

	for _, link := range strings.Split(links, ",") {
		if !strings.Contains(link, `rel="next"`) {
			continue
		}
		start := strings.Index(link, "<")
		end := strings.Index(link, ">")
		if start >= 0 && end > start {
			return link[start+1 : end]
		}
	}

	return ""
}
