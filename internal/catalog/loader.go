package catalog

import (
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Clients  []ClientPolicy `yaml:"clients"`
	Products []Product      `yaml:"products"`
}

// Load reads a YAML catalog file and validates its entries.
func Load(path string) (*Catalog, error) {
	// #nosec G304 -- path comes from operator-configured catalog path.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return New(file.Clients, file.Products)
}

// Default returns the built-in catalog used when no catalog file is
// configured.
func Default() *Catalog {
	c, err := New(defaultClients, defaultProducts)
	if err != nil {
		// The seed data is fixed at compile time; a failure here is a bug.
		panic(err)
	}
	return c
}

var defaultClients = []ClientPolicy{
	{
		ID:          "clienteA",
		Name:        "Supermercados DelSur",
		History:     "Premium client - 50 orders in the last year",
		CreditLimit: 50000000,
		MaxDiscount: 20,
		Category:    CategoryPremium,
		MinMargin:   12,
	},
	{
		ID:          "clienteB",
		Name:        "Restaurantes Gourmet SAS",
		History:     "Regular client - 25 orders in the last year",
		CreditLimit: 30000000,
		MaxDiscount: 15,
		Category:    CategoryRegular,
		MinMargin:   15,
	},
	{
		ID:          "clienteC",
		Name:        "Distribuidora NorteCol",
		History:     "New client - first order",
		CreditLimit: 10000000,
		MaxDiscount: 10,
		Category:    CategoryNew,
		MinMargin:   18,
	},
}

var defaultProducts = []Product{
	{ID: "1", Name: "Arroz Premium 50kg", BasePrice: 125000, Category: "Granos", Available: true},
	{ID: "2", Name: "Aceite de Girasol 20L", BasePrice: 85000, Category: "Aceites", Available: true},
	{ID: "3", Name: "Azúcar Refinada 50kg", BasePrice: 95000, Category: "Endulzantes", Available: true},
	{ID: "4", Name: "Harina de Trigo 50kg", BasePrice: 75000, Category: "Harinas", Available: true},
	{ID: "5", Name: "Sal Marina 25kg", BasePrice: 35000, Category: "Condimentos", Available: true},
	{ID: "6", Name: "Pasta Espagueti 20kg", BasePrice: 65000, Category: "Pastas", Available: true},
	{ID: "7", Name: "Lentejas 25kg", BasePrice: 95000, Category: "Legumbres", Available: true},
	{ID: "8", Name: "Café Molido 10kg", BasePrice: 180000, Category: "Bebidas", Available: true},
}
