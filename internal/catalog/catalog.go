// Package catalog holds the process-wide, read-only client-policy and
// product catalogs. Catalogs are fixed at startup and never mutated by the
// decision engine.
package catalog

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryPremium Category = "Premium"
	CategoryRegular Category = "Regular"
	CategoryNew     Category = "New"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPremium, CategoryRegular, CategoryNew:
		return true
	default:
		return false
	}
}

// ClientPolicy carries a client's commercial limits.
type ClientPolicy struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	History     string   `json:"history" yaml:"history"`
	CreditLimit float64  `json:"creditLimit" yaml:"credit_limit"`
	MaxDiscount float64  `json:"maxDiscount" yaml:"max_discount"`
	Category    Category `json:"category" yaml:"category"`
	MinMargin   float64  `json:"minMargin" yaml:"min_margin"`
}

type Product struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	BasePrice float64 `json:"basePrice" yaml:"base_price"`
	Category  string  `json:"category" yaml:"category"`
	Available bool    `json:"available" yaml:"available"`
}

// Catalog is immutable after construction.
type Catalog struct {
	clients   map[string]ClientPolicy
	clientIDs []string
	products  []Product
}

func New(clients []ClientPolicy, products []Product) (*Catalog, error) {
	c := &Catalog{clients: make(map[string]ClientPolicy, len(clients))}

	for _, client := range clients {
		if err := validateClient(client); err != nil {
			return nil, err
		}
		if _, exists := c.clients[client.ID]; exists {
			return nil, fmt.Errorf("duplicate client id %q", client.ID)
		}
		c.clients[client.ID] = client
		c.clientIDs = append(c.clientIDs, client.ID)
	}

	for _, product := range products {
		if product.ID == "" || product.Name == "" {
			return nil, fmt.Errorf("product id and name are required")
		}
		if product.BasePrice <= 0 {
			return nil, fmt.Errorf("product %q: base_price must be positive", product.ID)
		}
		c.products = append(c.products, product)
	}

	return c, nil
}

func validateClient(client ClientPolicy) error {
	if client.ID == "" || client.Name == "" {
		return fmt.Errorf("client id and name are required")
	}
	if client.CreditLimit <= 0 {
		return fmt.Errorf("client %q: credit_limit must be positive", client.ID)
	}
	if client.MaxDiscount < 0 || client.MaxDiscount > 100 {
		return fmt.Errorf("client %q: max_discount must be between 0 and 100", client.ID)
	}
	if client.MinMargin < 0 {
		return fmt.Errorf("client %q: min_margin must not be negative", client.ID)
	}
	if !client.Category.Valid() {
		return fmt.Errorf("client %q: unknown category %q", client.ID, client.Category)
	}
	return nil
}

// LookupClient returns the policy for a client id.
func (c *Catalog) LookupClient(id string) (ClientPolicy, bool) {
	client, ok := c.clients[id]
	return client, ok
}

// Clients lists all client policies in catalog order.
func (c *Catalog) Clients() []ClientPolicy {
	out := make([]ClientPolicy, 0, len(c.clientIDs))
	for _, id := range c.clientIDs {
		out = append(out, c.clients[id])
	}
	return out
}

// Products lists the available products.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.products))
	for _, product := range c.products {
		if product.Available {
			out = append(out, product)
		}
	}
	return out
}

func (c *Catalog) LookupProduct(id string) (Product, bool) {
	for _, product := range c.products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

// SearchProducts matches available products by case-insensitive substring.
func (c *Catalog) SearchProducts(query string) []Product {
	query = strings.ToLower(query)
	var out []Product
	for _, product := range c.products {
		if product.Available && strings.Contains(strings.ToLower(product.Name), query) {
			out = append(out, product)
		}
	}
	return out
}
