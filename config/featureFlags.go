package config

import (
	"os"
	"strings"
)

// SkipWebhookVerification disables Shopify HMAC checking on the order
// webhook. Only for local development against forwarded test payloads.
//
// Set via env:
// - SKIP_WEBHOOK_VERIFICATION=true
func SkipWebhookVerification() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SKIP_WEBHOOK_VERIFICATION")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
