// Package model contains the domain entities of the storefront.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products on the menu page.
type Category string

const (
	CategoryChocolate Category = "chocolate"
	CategoryFruits    Category = "frutas"
	CategorySpecials  Category = "especiais"
)

// Product is a catalog entry. The catalog is static and read-only.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Featured    bool            `json:"featured"`
	Image       string          `json:"image"`
}

// CartLine is one product in the cart. Name, price and image are snapshots
// taken when the product was first added; later catalog changes do not
// affect existing lines.
type CartLine struct {
	ProductID int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Coupon is an entry of the static discount registry. Codes are stored
// upper-cased and matched case-insensitively.
type Coupon struct {
	Code         string          `json:"code"`
	DiscountRate decimal.Decimal `json:"discount"`
	Description  string          `json:"description"`
}

// AppliedCoupon is the single active discount on the cart. It applies to the
// whole subtotal, not to specific lines.
type AppliedCoupon struct {
	Code         string          `json:"code"`
	DiscountRate decimal.Decimal `json:"discount"`
	Description  string          `json:"description"`
}

// DeliveryOption selects between home delivery and store pickup.
type DeliveryOption string

const (
	DeliveryOptionDelivery DeliveryOption = "delivery"
	DeliveryOptionPickup   DeliveryOption = "pickup"
)

// UserAccount is a registered account as persisted in the user directory,
// including the obfuscated password. Email is immutable after creation.
type UserAccount struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"createdAt"`
	IsAdmin      bool      `json:"isAdmin"`
}

// AccountInfo is a UserAccount projected without its password hash, as
// returned to admin listings.
type AccountInfo struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	IsAdmin   bool      `json:"isAdmin"`
}

// Session is the sanitized projection of a UserAccount held while the user
// is logged in. It never carries the password hash.
type Session struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	IsAdmin    bool      `json:"isAdmin"`
	LoginAt    time.Time `json:"loginAt"`
	RememberMe bool      `json:"rememberMe"`
}

// OrderCustomer holds the contact details entered at checkout.
type OrderCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderAddress is the delivery address. Present only on delivery orders.
type OrderAddress struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

// Order is a completed checkout: the cart contents and totals frozen at the
// moment the order was placed.
type Order struct {
	ID             string          `json:"id"`
	Customer       OrderCustomer   `json:"customer"`
	DeliveryOption DeliveryOption  `json:"deliveryOption"`
	Address        *OrderAddress   `json:"address,omitempty"`
	PaymentMethod  string          `json:"paymentMethod"`
	CashAmount     string          `json:"cashAmount,omitempty"`
	Items          []CartLine      `json:"items"`
	Coupon         *AppliedCoupon  `json:"coupon,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
	Total          decimal.Decimal `json:"total"`
	PlacedAt       time.Time       `json:"placedAt"`
}
