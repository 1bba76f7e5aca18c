package shopify

import "fmt"

// listPageSize is the maximum page size the listing endpoint accepts
const listPageSize = 250

// productsURL returns the paginated product listing endpoint
func (c *Client) productsURL() string {
	return fmt.Sprintf("%s/products.json?limit=%d", c.baseURL, listPageSize)
}

// productURL returns the endpoint for one product by id
func (c *Client) productURL(id int64) string {
	return fmt.Sprintf("%s/products/%d.json", c.baseURL, id)
}

// createProductURL returns the product creation endpoint
func (c *Client) createProductURL() string {
	return fmt.Sprintf("%s/products.json", c.baseURL)
}

// inventoryURL returns the inventory level set endpoint
func (c *Client) inventoryURL() string {
	return fmt.Sprintf("%s/inventory_levels/set.json", c.baseURL)
}
