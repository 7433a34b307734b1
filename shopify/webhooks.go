package shopify

import (
	"context"
	"fmt"
)

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ListWebhookSubscriptions returns the store's current webhook subscriptions.
func (c *Client) ListWebhookSubscriptions(ctx context.Context) ([]WebhookSubscription, error) {
	query := `
	query {
		webhookSubscriptions(first: 20) {
			edges {
				node {
					id
					topic
					endpoint {
						... on WebhookHttpEndpoint {
							callbackUrl
						}
					}
					createdAt
				}
			}
		}
	}`

	var data struct {
		WebhookSubscriptions struct {
			Edges []struct {
				Node WebhookSubscription `json:"node"`
			} `json:"edges"`
		} `json:"webhookSubscriptions"`
	}
	if err := c.execute(ctx, query, nil, &data); err != nil {
		return nil, err
	}

	webhooks := make([]WebhookSubscription, 0, len(data.WebhookSubscriptions.Edges))
	for _, edge := range data.WebhookSubscriptions.Edges {
		webhooks = append(webhooks, edge.Node)
	}
	return webhooks, nil
}

// CreateOrderWebhook subscribes the callback URL to ORDERS_CREATE.
func (c *Client) CreateOrderWebhook(ctx context.Context, callbackURL string) (*WebhookSubscription, error) {
	mutation := `
	mutation webhookSubscriptionCreate($topic: WebhookSubscriptionTopic!, $webhookSubscription: WebhookSubscriptionInput!) {
		webhookSubscriptionCreate(topic: $topic, webhookSubscription: $webhookSubscription) {
			webhookSubscription {
				id
				topic
				endpoint {
					... on WebhookHttpEndpoint {
						callbackUrl
					}
				}
			}
			userErrors {
				field
				message
			}
		}
	}`

	var data struct {
		WebhookSubscriptionCreate struct {
			WebhookSubscription *WebhookSubscription `json:"webhookSubscription"`
			UserErrors          []userError          `json:"userErrors"`
		} `json:"webhookSubscriptionCreate"`
	}
	variables := map[string]interface{}{
		"topic": "ORDERS_CREATE",
		"webhookSubscription": map[string]interface{}{
			"callbackUrl": callbackURL,
			"format":      "JSON",
		},
	}
	if err := c.execute(ctx, mutation, variables, &data); err != nil {
		return nil, err
	}
	if len(data.WebhookSubscriptionCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("webhook create rejected: %s", data.WebhookSubscriptionCreate.UserErrors[0].Message)
	}
	return data.WebhookSubscriptionCreate.WebhookSubscription, nil
}

// DeleteWebhookSubscription removes a subscription by gid.
func (c *Client) DeleteWebhookSubscription(ctx context.Context, id string) (string, error) {
	mutation := `
	mutation webhookSubscriptionDelete($id: ID!) {
		webhookSubscriptionDelete(id: $id) {
			deletedWebhookSubscriptionId
			userErrors {
				field
				message
			}
		}
	}`

	var data struct {
		WebhookSubscriptionDelete struct {
			DeletedWebhookSubscriptionId string      `json:"deletedWebhookSubscriptionId"`
			UserErrors                   []userError `json:"userErrors"`
		} `json:"webhookSubscriptionDelete"`
	}
	if err := c.execute(ctx, mutation, map[string]interface{}{"id": id}, &data); err != nil {
		return "", err
	}
	if len(data.WebhookSubscriptionDelete.UserErrors) > 0 {
		return "", fmt.Errorf("webhook delete rejected: %s", data.WebhookSubscriptionDelete.UserErrors[0].Message)
	}
	return data.WebhookSubscriptionDelete.DeletedWebhookSubscriptionId, nil
}
