package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client talks to the Shopify Admin GraphQL API. All dashboard reads and the
// per-order requirement lookups go through it.
type Client struct {
	endpoint    string
	accessToken string
	http        *http.Client
	limiter     <-chan time.Time
}

// NewClientFromEnv builds a client from env:
//   - SHOPIFY_STORE_URL (required, e.g. my-store.myshopify.com)
//   - SHOPIFY_ADMIN_ACCESS_TOKEN (required)
//   - SHOPIFY_API_VERSION (default 2025-01)
//   - SHOPIFY_API_BASE_URL (optional scheme+host override, used by tests)
//   - SHOPIFY_RATE_LIMIT_PER_SEC (default 2)
func NewClientFromEnv() (*Client, error) {
	storeURL := strings.TrimSpace(os.Getenv("SHOPIFY_STORE_URL"))
	accessToken := strings.TrimSpace(os.Getenv("SHOPIFY_ADMIN_ACCESS_TOKEN"))
	if storeURL == "" {
		return nil, errors.New("SHOPIFY_STORE_URL is empty")
	}
	if accessToken == "" {
		return nil, errors.New("SHOPIFY_ADMIN_ACCESS_TOKEN is empty")
	}

	apiVersion := strings.TrimSpace(os.Getenv("SHOPIFY_API_VERSION"))
	if apiVersion == "" {
		apiVersion = "2025-01"
	}
	baseURL := strings.TrimSpace(os.Getenv("SHOPIFY_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://" + storeURL
	}

	rateLimitPerSec := int64(2)
	if v := strings.TrimSpace(os.Getenv("SHOPIFY_RATE_LIMIT_PER_SEC")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerSec = n
		}
	}
	interval := time.Second / time.Duration(rateLimitPerSec)

	return &Client{
		endpoint:    strings.TrimRight(baseURL, "/") + "/admin/api/" + apiVersion + "/graphql.json",
		accessToken: accessToken,
		http:        &http.Client{Timeout: 30 * time.Second},
		limiter:     time.Tick(interval),
	}, nil
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// execute posts a GraphQL document and unmarshals the data payload into dest.
// GraphQL-level errors come back as Go errors; callers decide whether to
// fail open.
func (c *Client) execute(ctx context.Context, query string, variables map[string]interface{}, dest interface{}) error {
	<-c.limiter

	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("shopify api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return err
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("shopify graphql error: %s", parsed.Errors[0].Message)
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(parsed.Data, dest)
}
