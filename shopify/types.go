package shopify

// Shapes mirror the Admin GraphQL API responses; edges/node wrappers are
// kept as-is so the query documents and the Go types line up.

type Metafield struct {
	Value string `json:"value"`
}

type ProductImage struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

type ProductVariant struct {
	Id    string `json:"id"`
	Title string `json:"title"`
	Price string `json:"price"`
}

type Product struct {
	Id     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
	Status string `json:"status"`
	Images struct {
		Edges []struct {
			Node ProductImage `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Metafield *Metafield `json:"metafield"`
	Variants  struct {
		Edges []struct {
			Node ProductVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

// FirstImageURL returns the primary image URL or "".
func (p Product) FirstImageURL() string {
	if len(p.Images.Edges) == 0 {
		return ""
	}
	return p.Images.Edges[0].Node.URL
}

// FirstVariantPrice returns the first variant's price or "0".
func (p Product) FirstVariantPrice() string {
	if len(p.Variants.Edges) == 0 {
		return "0"
	}
	return p.Variants.Edges[0].Node.Price
}

// MetafieldValue returns the raw fabric_requirements payload or "".
func (p Product) MetafieldValue() string {
	if p.Metafield == nil {
		return ""
	}
	return p.Metafield.Value
}

type OrderLineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Product  *struct {
		Id        string     `json:"id"`
		Metafield *Metafield `json:"metafield"`
	} `json:"product"`
}

type Order struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	CreatedAt     string `json:"createdAt"`
	TotalPriceSet *struct {
		ShopMoney *struct {
			Amount       string `json:"amount"`
			CurrencyCode string `json:"currencyCode"`
		} `json:"shopMoney"`
	} `json:"totalPriceSet"`
	LineItems struct {
		Edges []struct {
			Node OrderLineItem `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
}

// TotalPrice returns the shop-currency amount or "0".
func (o Order) TotalPrice() string {
	if o.TotalPriceSet == nil || o.TotalPriceSet.ShopMoney == nil {
		return "0"
	}
	return o.TotalPriceSet.ShopMoney.Amount
}

type WebhookSubscription struct {
	Id       string `json:"id"`
	Topic    string `json:"topic"`
	Endpoint struct {
		CallbackURL string `json:"callbackUrl"`
	} `json:"endpoint"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// OrderWebhookPayload is the REST-shaped body Shopify POSTs to the
// orders/create webhook. Only the fields reconciliation needs are decoded.
type OrderWebhookPayload struct {
	Id          int64             `json:"id"`
	Name        string            `json:"name"`
	OrderNumber int64             `json:"order_number"`
	LineItems   []WebhookLineItem `json:"line_items"`
}

type WebhookLineItem struct {
	ProductId int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
}
