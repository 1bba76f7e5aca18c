package shopify

import (
	"context"

	"shopsync/pkg/models"
)

// FetchAllProducts walks the paginated product listing following the
// rel="next" link relation until no next page exists.
//
// A failure in the middle of pagination returns whatever was accumulated so
// far with a logged warning rather than a hard error; callers must tolerate
// an incomplete collection. A failure on the very first page returns the
// error, since nothing was accumulated.
func (c *Client) FetchAllProducts(ctx context.Context) ([]models.RemoteProduct, error) {
	url := c.productsURL()
	var all []models.RemoteProduct

	for url != "" {
		products, next, err := c.ListProductsPage(ctx, url)
		if err != nil {
			if len(all) == 0 {
				return nil, err
			}
			c.logger.WarnWithFields("pagination aborted, returning partial catalog", map[string]interface{}{
				"fetched": len(all),
				"url":     url,
				"error":   err.Error(),
			})
			return all, nil
		}

		all = append(all, products...)
		url = next
	}

	c.logger.DebugWithFields("remote catalog fetched", map[string]interface{}{
		"products": len(all),
	})

	return all, nil
}
