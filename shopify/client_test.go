package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("SHOPIFY_STORE_URL", "test-store.myshopify.com")
	t.Setenv("SHOPIFY_ADMIN_ACCESS_TOKEN", "shpat_test_token")
	t.Setenv("SHOPIFY_API_BASE_URL", srv.URL)
	t.Setenv("SHOPIFY_RATE_LIMIT_PER_SEC", "1000")

	client, err := NewClientFromEnv()
	if err != nil {
		t.Fatalf("NewClientFromEnv: %v", err)
	}
	return client
}

func TestNewClientFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("SHOPIFY_STORE_URL", "")
	t.Setenv("SHOPIFY_ADMIN_ACCESS_TOKEN", "")
	if _, err := NewClientFromEnv(); err == nil {
		t.Fatal("expected an error without SHOPIFY_STORE_URL")
	}

	t.Setenv("SHOPIFY_STORE_URL", "test-store.myshopify.com")
	if _, err := NewClientFromEnv(); err == nil {
		t.Fatal("expected an error without SHOPIFY_ADMIN_ACCESS_TOKEN")
	}
}

func TestClientSendsAccessToken(t *testing.T) {
	var gotToken, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":{"product":null}}`))
	})

	raw, err := client.FetchProductRequirement(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchProductRequirement: %v", err)
	}
	if raw != "" {
		t.Errorf("missing product should yield empty requirement, got %q", raw)
	}
	if gotToken != "shpat_test_token" {
		t.Errorf("access token header = %q", gotToken)
	}
	if !strings.HasSuffix(gotPath, "/graphql.json") {
		t.Errorf("request path = %q, want .../graphql.json", gotPath)
	}
}

func TestFetchProductRequirementReturnsMetafieldValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]interface{} `json:"variables"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Variables["id"] != "gid://shopify/Product/42" {
			t.Errorf("product gid = %v", req.Variables["id"])
		}
		w.Write([]byte(`{"data":{"product":{"metafield":{"value":"{\"fabrics\":{\"cotton\":2}}"}}}}`))
	})

	raw, err := client.FetchProductRequirement(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchProductRequirement: %v", err)
	}
	if raw != `{"fabrics":{"cotton":2}}` {
		t.Errorf("requirement = %q", raw)
	}
}

func TestClientSurfacesGraphQLErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Throttled"}]}`))
	})

	_, err := client.FetchProductRequirement(context.Background(), 42)
	if err == nil || !strings.Contains(err.Error(), "Throttled") {
		t.Fatalf("err = %v, want graphql error message surfaced", err)
	}
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := client.FetchProductRequirement(context.Background(), 42)
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v, want status code surfaced", err)
	}
}

func TestFetchProductsPaginates(t *testing.T) {
	page := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 1 {
			w.Write([]byte(`{"data":{"products":{"edges":[{"node":{"id":"gid://shopify/Product/1","title":"Shirt"},"cursor":"c1"}],"pageInfo":{"hasNextPage":true}}}}`))
			return
		}
		var req struct {
			Variables map[string]interface{} `json:"variables"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Variables["after"] != "c1" {
			t.Errorf("second page cursor = %v, want c1", req.Variables["after"])
		}
		w.Write([]byte(`{"data":{"products":{"edges":[{"node":{"id":"gid://shopify/Product/2","title":"Dress"},"cursor":"c2"}],"pageInfo":{"hasNextPage":false}}}}`))
	})

	products, err := client.FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("FetchProducts: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	if products[0].Title != "Shirt" || products[1].Title != "Dress" {
		t.Errorf("products = %+v", products)
	}
}
