package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsync/pkg/models"
)

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			"next only",
			`<https://shop/admin/api/2024-01/products.json?page_info=abc>; rel="next"`,
			"https://shop/admin/api/2024-01/products.json?page_info=abc",
		},
		{
			"previous and next",
			`<https://shop/p.json?page_info=prev>; rel="previous", <https://shop/p.json?page_info=next>; rel="next"`,
			"https://shop/p.json?page_info=next",
		},
		{
			"previous only",
			`<https://shop/p.json?page_info=prev>; rel="previous"`,
			"",
		},
		{"no header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.link != "" {
				header.Set("Link", tt.link)
			}
			assert.Equal(t, tt.want, nextPageURL(header))
		})
	}
}

func TestFetchAllProductsFollowsPagination(t *testing.T) {
	var server *httpServerRef
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page_info") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/products.json?page_info=p2>; rel="next"`, server.url))
			writeProducts(w, 1, 2)
		case "p2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/products.json?page_info=p3>; rel="next"`, server.url))
			writeProducts(w, 3)
		case "p3":
			writeProducts(w, 4, 5)
		}
	}

	client, srv, _ := newTestClient(t, handler)
	server = &httpServerRef{url: srv.URL}

	products, err := client.FetchAllProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 5)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(5), products[4].ID)
}

func TestFetchAllProductsPartialOnMidPaginationFailure(t *testing.T) {
	var server *httpServerRef
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/products.json?page_info=p2>; rel="next"`, server.url))
			writeProducts(w, 1, 2)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}

	client, srv, _ := newTestClient(t, handler)
	server = &httpServerRef{url: srv.URL}
	client.maxRetries = 0

	products, err := client.FetchAllProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestFetchAllProductsFirstPageFailurePropagates(t *testing.T) {
	client, server, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_ = server
	client.maxRetries = 0

	_, err := client.FetchAllProducts(context.Background())
	assert.Error(t, err)
}

func TestCreateProduct(t *testing.T) {
	client, server, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products.json", r.URL.Path)

		var payload ProductPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Oversized Hoodie", payload.Product.Title)

		json.NewEncoder(w).Encode(productEnvelope{
			Product: models.RemoteProduct{ID: 42, Title: payload.Product.Title},
		})
	})
	_ = server

	created, err := client.CreateProduct(context.Background(), &ProductPayload{
		Product: ProductFields{Title: "Oversized Hoodie"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
}

func TestUpdateProductSetsID(t *testing.T) {
	client, server, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/42.json", r.URL.Path)

		var payload ProductPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, int64(42), payload.Product.ID)

		w.Write([]byte(`{}`))
	})
	_ = server

	err := client.UpdateProduct(context.Background(), 42, &ProductPayload{
		Product: ProductFields{Title: "Oversized Hoodie"},
	})
	assert.NoError(t, err)
}

func TestSetInventoryLevel(t *testing.T) {
	client, server, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/inventory_levels/set.json", r.URL.Path)

		var payload inventoryLevelPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "77", payload.LocationID)
		assert.Equal(t, int64(9001), payload.InventoryItemID)
		assert.Equal(t, 1000, payload.Available)

		w.Write([]byte(`{}`))
	})
	_ = server

	err := client.SetInventoryLevel(context.Background(), 9001, 1000)
	assert.NoError(t, err)
}

// httpServerRef lets handlers reference the server URL after creation
type httpServerRef struct {
	url string
}

func writeProducts(w http.ResponseWriter, ids ...int64) {
	var products []models.RemoteProduct
	for _, id := range ids {
		products = append(products, models.RemoteProduct{ID: id})
	}
	json.NewEncoder(w).Encode(productListResponse{Products: products})
}
