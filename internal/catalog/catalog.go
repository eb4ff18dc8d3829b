// Package catalog holds the static product catalog and the coupon registry.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sweetcupcakes/storefront/internal/model"
)

// featuredLimit caps how many featured products the home page shows.
const featuredLimit = 6

var products = []model.Product{
	{
		ID:          1,
		Name:        "Cupcake de Chocolate",
		Description: "Delicioso cupcake de chocolate com cobertura cremosa",
		Price:       price("8.50"),
		Category:    model.CategoryChocolate,
		Featured:    true,
		Image:       "https://images.unsplash.com/photo-1614707267537-b85aaf00c4b7?w=500&h=500&fit=crop",
	},
	{
		ID:          2,
		Name:        "Cupcake de Morango",
		Description: "Massa suave com recheio de morango fresco",
		Price:       price("9.00"),
		Category:    model.CategoryFruits,
		Featured:    true,
		Image:       "https://images.unsplash.com/photo-1587241321921-91a834d82b01?w=500&h=500&fit=crop",
	},
	{
		ID:          3,
		Name:        "Cupcake Red Velvet",
		Description: "O clássico red velvet com cream cheese",
		Price:       price("10.50"),
		Category:    model.CategorySpecials,
		Featured:    true,
		Image:       "https://images.unsplash.com/photo-1599785209796-786432b228bc?w=500&h=500&fit=crop",
	},
	{
		ID:          4,
		Name:        "Cupcake de Baunilha",
		Description: "Clássico e irresistível com cobertura de baunilha",
		Price:       price("8.00"),
		Category:    model.CategorySpecials,
		Image:       "https://images.unsplash.com/photo-1576618148400-f54bed99fcfd?w=500&h=500&fit=crop",
	},
	{
		ID:          5,
		Name:        "Cupcake de Limão",
		Description: "Refrescante sabor cítrico com cobertura leve",
		Price:       price("8.50"),
		Category:    model.CategoryFruits,
		Image:       "https://images.unsplash.com/photo-1550617931-e17a7b70dce2?w=500&h=500&fit=crop",
	},
	{
		ID:          6,
		Name:        "Cupcake de Chocolate Branco",
		Description: "Suave chocolate branco com raspas",
		Price:       price("9.50"),
		Category:    model.CategoryChocolate,
		Image:       "https://images.unsplash.com/photo-1603532648955-039310d9ed75?w=500&h=500&fit=crop",
	},
	{
		ID:          7,
		Name:        "Cupcake de Nutella",
		Description: "Recheado com Nutella e cobertura de avelã",
		Price:       price("11.00"),
		Category:    model.CategoryChocolate,
		Featured:    true,
		Image:       "https://images.unsplash.com/photo-1426869884541-df7117556757?w=500&h=500&fit=crop",
	},
	{
		ID:          8,
		Name:        "Cupcake de Frutas Vermelhas",
		Description: "Mix de frutas vermelhas frescas",
		Price:       price("10.00"),
		Category:    model.CategoryFruits,
		Image:       "https://images.unsplash.com/photo-1519915212116-7cfef71f1d3e?w=500&h=500&fit=crop",
	},
	{
		ID:          9,
		Name:        "Cupcake Brigadeiro",
		Description: "O favorito brasileiro em formato de cupcake",
		Price:       price("9.50"),
		Category:    model.CategoryChocolate,
		Image:       "https://images.unsplash.com/photo-1558326567-98ae2405596b?w=500&h=500&fit=crop",
	},
	{
		ID:          10,
		Name:        "Cupcake de Coco",
		Description: "Massa de coco com cobertura cremosa",
		Price:       price("8.50"),
		Category:    model.CategorySpecials,
		Image:       "https://images.unsplash.com/photo-1599785209707-a456fc1337bb?w=500&h=500&fit=crop",
	},
	{
		ID:          11,
		Name:        "Cupcake Cookies & Cream",
		Description: "Oreo triturado na massa e cobertura",
		Price:       price("10.50"),
		Category:    model.CategorySpecials,
		Featured:    true,
		Image:       "https://images.unsplash.com/photo-1587241321921-91a834d82b01?w=500&h=500&fit=crop",
	},
	{
		ID:          12,
		Name:        "Cupcake de Doce de Leite",
		Description: "Recheado com doce de leite argentino",
		Price:       price("9.00"),
		Category:    model.CategorySpecials,
		Image:       "https://images.unsplash.com/photo-1614707267537-b85aaf00c4b7?w=500&h=500&fit=crop",
	},
}

var coupons = map[string]model.Coupon{
	"DOCURA10": {Code: "DOCURA10", DiscountRate: price("0.10"), Description: "10% de desconto"},
	"PRIMEIRA": {Code: "PRIMEIRA", DiscountRate: price("0.15"), Description: "15% de desconto"},
	"CUPOM20":  {Code: "CUPOM20", DiscountRate: price("0.20"), Description: "20% de desconto"},
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// All returns every product on the menu.
func All() []model.Product {
	res := make([]model.Product, len(products))
	copy(res, products)
	return res
}

// Find returns the product with the given id, or nil if it is unknown.
func Find(id int) *model.Product {
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p
		}
	}
	return nil
}

// Featured returns the products highlighted on the home page, at most six.
func Featured() []model.Product {
	var res []model.Product
	for _, p := range products {
		if p.Featured {
			res = append(res, p)
			if len(res) == featuredLimit {
				break
			}
		}
	}
	return res
}

// ByCategory returns the products of one menu category.
func ByCategory(category model.Category) []model.Product {
	var res []model.Product
	for _, p := range products {
		if p.Category == category {
			res = append(res, p)
		}
	}
	return res
}

// FindCoupon looks a coupon up by code. The code is trimmed and upper-cased
// before the lookup; the second return value reports whether it exists.
func FindCoupon(code string) (model.Coupon, bool) {
	c, ok := coupons[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}
