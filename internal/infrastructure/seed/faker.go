package seed

import (
	"fmt"
	"math"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ecomstore/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// FakeProducts generates n plausible catalog products. The same non-zero
// seed yields the same products.
func FakeProducts(seed uint64, n int) ([]*catalog.Product, error) {
	if n <= 0 {
		return nil, nil
	}
	f := gofakeit.New(seed)
	categories := catalog.AllCategories()

	products := make([]*catalog.Product, 0, n)
	for i := 0; i < n; i++ {
		product, err := catalog.NewProduct(catalog.ProductDetails{
			Name:        f.ProductName(),
			Description: f.Sentence(15),
			Price:       decimal.NewFromFloat(f.Price(5, 500)).Round(2),
			Images:      []string{"https://picsum.photos/seed/" + f.UUID() + "/500/500"},
			Category:    categories[f.Number(0, len(categories)-1)],
			Brand:       f.Company(),
			Stock:       f.Number(0, 200),
			Featured:    f.Number(1, 10) == 1,
			Tags:        []string{f.Word(), f.Word(), f.Word()},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate product %d: %w", i+1, err)
		}
		product.Ratings = catalog.Ratings{
			Average: math.Round(f.Float64Range(3, 5)*10) / 10,
			Count:   f.Number(0, 300),
		}
		products = append(products, product)
	}
	return products, nil
}
