// Package cart implements the cart ledger: line items, the applied coupon
// and the derived totals, persisted in the durable key-value scope.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sweetcupcakes/storefront/internal/catalog"
	"github.com/sweetcupcakes/storefront/internal/kv"
	"github.com/sweetcupcakes/storefront/internal/model"
)

const (
	cartKey   = "cart"
	couponKey = "appliedCoupon"
	ordersKey = "orders"
)

// ErrEmptyCouponCode is returned when the coupon code is empty after trimming.
var (
	ErrEmptyCouponCode = errors.New("empty coupon code")
	// ErrUnknownCoupon is returned when the code is not in the registry.
	ErrUnknownCoupon = errors.New("invalid coupon")
	// ErrEmptyCart is returned when checking out with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidDeliveryOption is returned when the checkout form carries an
	// option other than delivery or pickup.
	ErrInvalidDeliveryOption = errors.New("invalid delivery option")
	// ErrAddressRequired is returned when a delivery order has no address.
	ErrAddressRequired = errors.New("delivery address is required")
)

// Ledger owns the cart state. All state lives in the injected store; each
// operation reads the current state, computes the full next state and writes
// it back. Concurrent callers race on the store with last-write-wins
// semantics, the same limitation the original had across browser tabs.
type Ledger struct {
	store       kv.Store
	deliveryFee decimal.Decimal
}

// NewLedger creates a ledger over the given durable store. deliveryFee is
// the flat fee charged on delivery orders.
func NewLedger(store kv.Store, deliveryFee decimal.Decimal) *Ledger {
	return &Ledger{
		store:       store,
		deliveryFee: deliveryFee,
	}
}

// OrderForm is the checkout input collected from the customer.
type OrderForm struct {
	Customer       model.OrderCustomer  `json:"customer"`
	DeliveryOption model.DeliveryOption `json:"deliveryOption"`
	Address        *model.OrderAddress  `json:"address,omitempty"`
	PaymentMethod  string               `json:"paymentMethod"`
	CashAmount     string               `json:"cashAmount,omitempty"`
}

// loadLines reads the persisted cart. A missing or unparseable value is
// treated as an empty cart.
func (l *Ledger) loadLines(ctx context.Context) ([]model.CartLine, error) {
	raw, err := l.store.Get(ctx, cartKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, nil
	}
	return lines, nil
}

func (l *Ledger) saveLines(ctx context.Context, lines []model.CartLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := l.store.Set(ctx, cartKey, string(raw)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Lines returns the current cart contents.
func (l *Ledger) Lines(ctx context.Context) ([]model.CartLine, error) {
	return l.loadLines(ctx)
}

// ItemCount returns the total quantity across all lines, as shown on the
// cart badge.
func (l *Ledger) ItemCount(ctx context.Context) (int, error) {
	lines, err := l.loadLines(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count, nil
}

// AddItem adds one unit of the product to the cart. An unknown product id is
// a silent no-op and returns a nil product. On the first add of a product
// the line snapshots name, price and image from the catalog.
func (l *Ledger) AddItem(ctx context.Context, productID int) (*model.Product, error) {
	product := catalog.Find(productID)
	if product == nil {
		return nil, nil
	}

	lines, err := l.loadLines(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			found = true
			break
		}
	}

	if !found {
		lines = append(lines, model.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  1,
		})
	}

	if err := l.saveLines(ctx, lines); err != nil {
		return nil, err
	}
	return product, nil
}

// RemoveItem deletes the line for the product. Removing an absent product is
// a no-op.
func (l *Ledger) RemoveItem(ctx context.Context, productID int) error {
	lines, err := l.loadLines(ctx)
	if err != nil {
		return err
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}

	return l.saveLines(ctx, kept)
}

// ChangeQuantity adds delta to the line's quantity. If the result drops to
// zero or below the line is removed entirely. No line for the product is a
// no-op.
func (l *Ledger) ChangeQuantity(ctx context.Context, productID, delta int) error {
	lines, err := l.loadLines(ctx)
	if err != nil {
		return err
	}

	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}

		lines[i].Quantity += delta
		if lines[i].Quantity <= 0 {
			lines = append(lines[:i], lines[i+1:]...)
		}
		return l.saveLines(ctx, lines)
	}

	return nil
}

// Subtotal returns the sum of price times quantity over all lines,
// recomputed from the persisted state on every call.
func (l *Ledger) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	lines, err := l.loadLines(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum, nil
}

// Coupon returns the applied coupon, or nil if none is active. A malformed
// persisted value is treated as no coupon.
func (l *Ledger) Coupon(ctx context.Context) (*model.AppliedCoupon, error) {
	raw, err := l.store.Get(ctx, couponKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load coupon: %w", err)
	}

	var coupon *model.AppliedCoupon
	if err := json.Unmarshal([]byte(raw), &coupon); err != nil {
		return nil, nil
	}
	return coupon, nil
}

func (l *Ledger) saveCoupon(ctx context.Context, coupon *model.AppliedCoupon) error {
	raw, err := json.Marshal(coupon)
	if err != nil {
		return fmt.Errorf("marshal coupon: %w", err)
	}
	if err := l.store.Set(ctx, couponKey, string(raw)); err != nil {
		return fmt.Errorf("save coupon: %w", err)
	}
	return nil
}

// ApplyCoupon validates and applies a coupon code, replacing any coupon
// already active. The returned coupon carries the description shown to the
// customer.
func (l *Ledger) ApplyCoupon(ctx context.Context, code string) (*model.AppliedCoupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCouponCode
	}

	coupon, ok := catalog.FindCoupon(code)
	if !ok {
		return nil, ErrUnknownCoupon
	}

	applied := &model.AppliedCoupon{
		Code:         coupon.Code,
		DiscountRate: coupon.DiscountRate,
		Description:  coupon.Description,
	}

	if err := l.saveCoupon(ctx, applied); err != nil {
		return nil, err
	}
	return applied, nil
}

// RemoveCoupon clears the applied coupon.
func (l *Ledger) RemoveCoupon(ctx context.Context) error {
	return l.saveCoupon(ctx, nil)
}

// Discount returns subtotal times the applied coupon's rate, or zero when no
// coupon is active.
func (l *Ledger) Discount(ctx context.Context) (decimal.Decimal, error) {
	coupon, err := l.Coupon(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if coupon == nil {
		return decimal.Zero, nil
	}

	subtotal, err := l.Subtotal(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Mul(coupon.DiscountRate), nil
}

// DeliveryFee returns the flat fee for delivery orders and zero for pickup.
func (l *Ledger) DeliveryFee(option model.DeliveryOption) decimal.Decimal {
	if option == model.DeliveryOptionDelivery {
		return l.deliveryFee
	}
	return decimal.Zero
}

// Total returns subtotal minus discount plus the delivery fee. The result is
// clamped at zero, though with discount rates at most 1 it cannot go below.
func (l *Ledger) Total(ctx context.Context, option model.DeliveryOption) (decimal.Decimal, error) {
	subtotal, err := l.Subtotal(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	discount, err := l.Discount(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := subtotal.Sub(discount).Add(l.DeliveryFee(option))
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total, nil
}

// Clear removes all lines and the applied coupon.
func (l *Ledger) Clear(ctx context.Context) error {
	if err := l.saveLines(ctx, nil); err != nil {
		return err
	}
	return l.saveCoupon(ctx, nil)
}

// PlaceOrder turns the current cart into an order: it snapshots the items,
// the coupon and all totals, appends the order to the durable order log and
// clears the cart.
func (l *Ledger) PlaceOrder(ctx context.Context, form OrderForm) (*model.Order, error) {
	switch form.DeliveryOption {
	case model.DeliveryOptionDelivery, model.DeliveryOptionPickup:
	default:
		return nil, ErrInvalidDeliveryOption
	}

	if form.DeliveryOption == model.DeliveryOptionDelivery && form.Address == nil {
		return nil, ErrAddressRequired
	}

	lines, err := l.loadLines(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	coupon, err := l.Coupon(ctx)
	if err != nil {
		return nil, err
	}
	subtotal, err := l.Subtotal(ctx)
	if err != nil {
		return nil, err
	}
	discount, err := l.Discount(ctx)
	if err != nil {
		return nil, err
	}
	total, err := l.Total(ctx, form.DeliveryOption)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		ID:             uuid.NewString(),
		Customer:       form.Customer,
		DeliveryOption: form.DeliveryOption,
		Address:        form.Address,
		PaymentMethod:  form.PaymentMethod,
		CashAmount:     form.CashAmount,
		Items:          lines,
		Coupon:         coupon,
		Subtotal:       subtotal,
		Discount:       discount,
		DeliveryFee:    l.DeliveryFee(form.DeliveryOption),
		Total:          total,
		PlacedAt:       time.Now().UTC(),
	}

	orders, err := l.Orders(ctx)
	if err != nil {
		return nil, err
	}
	orders = append(orders, order)

	raw, err := json.Marshal(orders)
	if err != nil {
		return nil, fmt.Errorf("marshal orders: %w", err)
	}
	if err := l.store.Set(ctx, ordersKey, string(raw)); err != nil {
		return nil, fmt.Errorf("save orders: %w", err)
	}

	if err := l.Clear(ctx); err != nil {
		return nil, err
	}

	return &order, nil
}

// Orders returns every order placed so far, oldest first.
func (l *Ledger) Orders(ctx context.Context) ([]model.Order, error) {
	raw, err := l.store.Get(ctx, ordersKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load orders: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, nil
	}
	return orders, nil
}
