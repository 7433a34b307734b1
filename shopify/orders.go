package shopify

import "context"

const orderFields = `
	id
	name
	createdAt
	totalPriceSet {
		shopMoney {
			amount
			currencyCode
		}
	}
	lineItems(first: 50) {
		edges {
			node {
				title
				quantity
				product {
					id
					metafield(namespace: "custom", key: "fabric_requirements") {
						value
					}
				}
			}
		}
	}`

// FetchOrders returns the most recent orders, newest first.
func (c *Client) FetchOrders(ctx context.Context, first int) ([]Order, error) {
	if first <= 0 {
		first = 50
	}
	query := `
	query GetOrders($first: Int!) {
		orders(first: $first, sortKey: CREATED_AT, reverse: true) {
			edges {
				node {` + orderFields + `
				}
			}
		}
	}`

	var data struct {
		Orders struct {
			Edges []struct {
				Node Order `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	}
	if err := c.execute(ctx, query, map[string]interface{}{"first": first}, &data); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(data.Orders.Edges))
	for _, edge := range data.Orders.Edges {
		orders = append(orders, edge.Node)
	}
	return orders, nil
}

// FetchOrderById fetches a single order by gid. Returns (nil, nil) when the
// order does not exist.
func (c *Client) FetchOrderById(ctx context.Context, id string) (*Order, error) {
	query := `
	query GetOrder($id: ID!) {
		order(id: $id) {` + orderFields + `
		}
	}`

	var data struct {
		Order *Order `json:"order"`
	}
	if err := c.execute(ctx, query, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	return data.Order, nil
}
