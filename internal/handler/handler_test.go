package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sweetcupcakes/storefront/internal/auth"
	"github.com/sweetcupcakes/storefront/internal/cart"
	"github.com/sweetcupcakes/storefront/internal/model"
)

type stubCart struct {
	addItemResp *model.Product
	addItemErr  error

	linesResp []model.CartLine
	linesErr  error

	itemCountResp int

	couponResp *model.AppliedCoupon

	applyCouponResp *model.AppliedCoupon
	applyCouponErr  error

	placeOrderResp *model.Order
	placeOrderErr  error

	ordersResp []model.Order
	ordersErr  error

	removeItemErr     error
	changeQuantityErr error
	removeCouponErr   error
	clearErr          error
}

func (s *stubCart) AddItem(ctx context.Context, productID int) (*model.Product, error) {
	return s.addItemResp, s.addItemErr
}

func (s *stubCart) RemoveItem(ctx context.Context, productID int) error {
	return s.removeItemErr
}

func (s *stubCart) ChangeQuantity(ctx context.Context, productID, delta int) error {
	return s.changeQuantityErr
}

func (s *stubCart) Lines(ctx context.Context) ([]model.CartLine, error) {
	return s.linesResp, s.linesErr
}

func (s *stubCart) ItemCount(ctx context.Context) (int, error) {
	return s.itemCountResp, nil
}

func (s *stubCart) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubCart) Coupon(ctx context.Context) (*model.AppliedCoupon, error) {
	return s.couponResp, nil
}

func (s *stubCart) ApplyCoupon(ctx context.Context, code string) (*model.AppliedCoupon, error) {
	return s.applyCouponResp, s.applyCouponErr
}

func (s *stubCart) RemoveCoupon(ctx context.Context) error {
	return s.removeCouponErr
}

func (s *stubCart) Discount(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubCart) DeliveryFee(option model.DeliveryOption) decimal.Decimal {
	return decimal.Zero
}

func (s *stubCart) Total(ctx context.Context, option model.DeliveryOption) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubCart) Clear(ctx context.Context) error {
	return s.clearErr
}

func (s *stubCart) PlaceOrder(ctx context.Context, form cart.OrderForm) (*model.Order, error) {
	return s.placeOrderResp, s.placeOrderErr
}

func (s *stubCart) Orders(ctx context.Context) ([]model.Order, error) {
	return s.ordersResp, s.ordersErr
}

type stubSessions struct {
	registerResp *model.AccountInfo
	registerErr  error

	loginResp *model.Session
	loginErr  error

	logoutErr error

	currentResp *model.Session
	currentErr  error

	updateResp *model.Session
	updateErr  error

	changePasswordErr error

	listResp []model.AccountInfo
	listErr  error
}

func (s *stubSessions) Register(ctx context.Context, form auth.RegistrationForm) (*model.AccountInfo, error) {
	return s.registerResp, s.registerErr
}

func (s *stubSessions) Login(ctx context.Context, email, password string, rememberMe bool) (*model.Session, error) {
	return s.loginResp, s.loginErr
}

func (s *stubSessions) Logout(ctx context.Context) error {
	return s.logoutErr
}

func (s *stubSessions) CurrentSession(ctx context.Context) (*model.Session, error) {
	return s.currentResp, s.currentErr
}

func (s *stubSessions) UpdateProfile(ctx context.Context, update auth.ProfileUpdate) (*model.Session, error) {
	return s.updateResp, s.updateErr
}

func (s *stubSessions) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return s.changePasswordErr
}

func (s *stubSessions) ListAccounts(ctx context.Context) ([]model.AccountInfo, error) {
	return s.listResp, s.listErr
}

func newTestHandler(t *testing.T, c Cart, sess Sessions) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	return NewHandler(c, sess, logger)
}

func TestAddCartItem_KnownProduct(t *testing.T) {
	c := &stubCart{
		addItemResp: &model.Product{ID: 1, Name: "Cupcake de Chocolate"},
	}
	h := newTestHandler(t, c, &stubSessions{})

	body, _ := json.Marshal(addItemRequest{ProductID: 1})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.AddCartItem(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var msg messageResponse
	if err := json.NewDecoder(res.Body).Decode(&msg); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(msg.Message, "Cupcake de Chocolate") {
		t.Fatalf("message = %q, want product name in it", msg.Message)
	}
}

func TestAddCartItem_UnknownProductNoContent(t *testing.T) {
	h := newTestHandler(t, &stubCart{}, &stubSessions{})

	body, _ := json.Marshal(addItemRequest{ProductID: 999})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.AddCartItem(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
}

func TestGetCart_JSONResponse(t *testing.T) {
	c := &stubCart{
		linesResp: []model.CartLine{
			{ProductID: 1, Name: "Cupcake de Chocolate", Price: decimal.RequireFromString("8.50"), Quantity: 2},
		},
		itemCountResp: 2,
	}
	h := newTestHandler(t, c, &stubSessions{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	h.GetCart(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var resp cartResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ItemCount != 2 {
		t.Fatalf("itemCount = %d, want 2", resp.ItemCount)
	}
}

func TestApplyCoupon_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty code", cart.ErrEmptyCouponCode, http.StatusBadRequest},
		{"unknown code", cart.ErrUnknownCoupon, http.StatusUnprocessableEntity},
		{"success", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &stubCart{applyCouponErr: tt.err}
			if tt.err == nil {
				c.applyCouponResp = &model.AppliedCoupon{Code: "DOCURA10"}
			}
			h := newTestHandler(t, c, &stubSessions{})

			body, _ := json.Marshal(couponRequest{Code: "whatever"})

			req := httptest.NewRequest(http.MethodPost, "/api/cart/coupon", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.ApplyCoupon(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	c := &stubCart{placeOrderErr: cart.ErrEmptyCart}
	h := newTestHandler(t, c, &stubSessions{})

	body, _ := json.Marshal(cart.OrderForm{DeliveryOption: model.DeliveryOptionPickup})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Checkout(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestCheckout_MissingAddress(t *testing.T) {
	c := &stubCart{placeOrderErr: cart.ErrAddressRequired}
	h := newTestHandler(t, c, &stubSessions{})

	body, _ := json.Marshal(cart.OrderForm{DeliveryOption: model.DeliveryOptionDelivery})

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Checkout(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestGetOrders_NoContent(t *testing.T) {
	h := newTestHandler(t, &stubCart{}, &stubSessions{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	h.GetOrders(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	sess := &stubSessions{registerErr: auth.ErrDuplicateEmail}
	h := newTestHandler(t, &stubCart{}, sess)

	body, _ := json.Marshal(auth.RegistrationForm{
		FirstName: "Maria",
		LastName:  "Souza",
		Email:     "maria@email.com",
		Password:  "senha123",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	sess := &stubSessions{registerErr: auth.ErrInvalidEmail}
	h := newTestHandler(t, &stubCart{}, sess)

	body, _ := json.Marshal(auth.RegistrationForm{
		FirstName: "Maria",
		LastName:  "Souza",
		Email:     "not-an-email",
		Password:  "senha123",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestLogin_UnauthorizedOnBadCredentials(t *testing.T) {
	sess := &stubSessions{loginErr: auth.ErrInvalidCredentials}
	h := newTestHandler(t, &stubCart{}, sess)

	body, _ := json.Marshal(loginRequest{
		Email:    "joao@email.com",
		Password: "wrong",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}

	var msg messageResponse
	if err := json.NewDecoder(res.Body).Decode(&msg); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if msg.Message != "E-mail ou senha incorretos" {
		t.Fatalf("message = %q, want uniform credentials message", msg.Message)
	}
}

func TestGetSession_NoContentWhenAnonymous(t *testing.T) {
	h := newTestHandler(t, &stubCart{}, &stubSessions{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/session", nil)
	rec := httptest.NewRecorder()

	h.GetSession(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
}

func TestUpdateProfile_NotLoggedIn(t *testing.T) {
	sess := &stubSessions{updateErr: auth.ErrNotLoggedIn}
	h := newTestHandler(t, &stubCart{}, sess)

	body, _ := json.Marshal(auth.ProfileUpdate{FirstName: "Novo"})

	req := httptest.NewRequest(http.MethodPut, "/api/user/profile", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.UpdateProfile(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	sess := &stubSessions{changePasswordErr: auth.ErrWrongPassword}
	h := newTestHandler(t, &stubCart{}, sess)

	body, _ := json.Marshal(changePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "nova123",
	})

	req := httptest.NewRequest(http.MethodPut, "/api/user/password", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.ChangePassword(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}

func TestGetProducts_FilterByQuery(t *testing.T) {
	h := newTestHandler(t, &stubCart{}, &stubSessions{})

	req := httptest.NewRequest(http.MethodGet, "/api/products?featured=1", nil)
	rec := httptest.NewRecorder()

	h.GetProducts(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}

	var products []model.Product
	if err := json.NewDecoder(res.Body).Decode(&products); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(products) == 0 || len(products) > 6 {
		t.Fatalf("featured products = %d, want between 1 and 6", len(products))
	}
	for _, p := range products {
		if !p.Featured {
			t.Fatalf("product %d returned as featured but is not", p.ID)
		}
	}
}

func TestAddCartItem_BadJSON(t *testing.T) {
	h := newTestHandler(t, &stubCart{}, &stubSessions{})

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader("{"))
	rec := httptest.NewRecorder()

	h.AddCartItem(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadRequest)
	}
}
