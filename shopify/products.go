package shopify

import (
	"context"
	"fmt"
)

const productFields = `
	id
	title
	handle
	status
	images(first: 1) {
		edges {
			node {
				url
				altText
			}
		}
	}
	metafield(namespace: "custom", key: "fabric_requirements") {
		value
	}
	variants(first: 1) {
		edges {
			node {
				id
				title
				price
			}
		}
	}`

// FetchProducts returns all ACTIVE products, paging through the catalog
// 250 at a time (Shopify's page-size ceiling).
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	query := `
	query GetProducts($first: Int!, $query: String, $after: String) {
		products(first: $first, query: $query, after: $after) {
			edges {
				node {` + productFields + `
				}
				cursor
			}
			pageInfo {
				hasNextPage
			}
		}
	}`

	type productsData struct {
		Products struct {
			Edges []struct {
				Node   Product `json:"node"`
				Cursor string  `json:"cursor"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
		} `json:"products"`
	}

	allProducts := make([]Product, 0)
	var cursor *string
	for {
		variables := map[string]interface{}{
			"first": 250,
			"query": "status:active",
		}
		if cursor != nil {
			variables["after"] = *cursor
		}

		var data productsData
		if err := c.execute(ctx, query, variables, &data); err != nil {
			return nil, err
		}
		for _, edge := range data.Products.Edges {
			allProducts = append(allProducts, edge.Node)
		}

		if !data.Products.PageInfo.HasNextPage || len(data.Products.Edges) == 0 {
			break
		}
		last := data.Products.Edges[len(data.Products.Edges)-1].Cursor
		cursor = &last
	}
	return allProducts, nil
}

// FetchProductById fetches a single product by gid. Returns (nil, nil) when
// the product does not exist.
func (c *Client) FetchProductById(ctx context.Context, id string) (*Product, error) {
	query := `
	query GetProduct($id: ID!) {
		product(id: $id) {` + productFields + `
		}
	}`

	var data struct {
		Product *Product `json:"product"`
	}
	if err := c.execute(ctx, query, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	return data.Product, nil
}

// ProductGID converts a numeric webhook product id to the Admin API gid form.
func ProductGID(productId int64) string {
	return fmt.Sprintf("gid://shopify/Product/%d", productId)
}

// FetchProductRequirement returns the raw fabric_requirements metafield for
// a product. Missing product or missing metafield both yield "": the caller
// treats that as "no requirement".
func (c *Client) FetchProductRequirement(ctx context.Context, productId int64) (string, error) {
	query := `
	query GetProductMetafield($id: ID!) {
		product(id: $id) {
			metafield(namespace: "custom", key: "fabric_requirements") {
				value
			}
		}
	}`

	var data struct {
		Product *struct {
			Metafield *Metafield `json:"metafield"`
		} `json:"product"`
	}
	if err := c.execute(ctx, query, map[string]interface{}{"id": ProductGID(productId)}, &data); err != nil {
		return "", err
	}
	if data.Product == nil || data.Product.Metafield == nil {
		return "", nil
	}
	return data.Product.Metafield.Value, nil
}
