// Package handler contains the HTTP handlers driving the storefront core.
// It is the rendering-side collaborator: it only branches on the results of
// the cart ledger and the session store and maps them to HTTP responses.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sweetcupcakes/storefront/internal/auth"
	"github.com/sweetcupcakes/storefront/internal/cart"
	"github.com/sweetcupcakes/storefront/internal/catalog"
	"github.com/sweetcupcakes/storefront/internal/model"
)

// Cart defines the cart ledger contract used by the HTTP handlers.
type Cart interface {
	AddItem(ctx context.Context, productID int) (*model.Product, error)
	RemoveItem(ctx context.Context, productID int) error
	ChangeQuantity(ctx context.Context, productID, delta int) error
	Lines(ctx context.Context) ([]model.CartLine, error)
	ItemCount(ctx context.Context) (int, error)
	Subtotal(ctx context.Context) (decimal.Decimal, error)
	Coupon(ctx context.Context) (*model.AppliedCoupon, error)
	ApplyCoupon(ctx context.Context, code string) (*model.AppliedCoupon, error)
	RemoveCoupon(ctx context.Context) error
	Discount(ctx context.Context) (decimal.Decimal, error)
	DeliveryFee(option model.DeliveryOption) decimal.Decimal
	Total(ctx context.Context, option model.DeliveryOption) (decimal.Decimal, error)
	Clear(ctx context.Context) error
	PlaceOrder(ctx context.Context, form cart.OrderForm) (*model.Order, error)
	Orders(ctx context.Context) ([]model.Order, error)
}

// Sessions defines the session store contract used by the HTTP handlers.
type Sessions interface {
	Register(ctx context.Context, form auth.RegistrationForm) (*model.AccountInfo, error)
	Login(ctx context.Context, email, password string, rememberMe bool) (*model.Session, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) (*model.Session, error)
	UpdateProfile(ctx context.Context, update auth.ProfileUpdate) (*model.Session, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	ListAccounts(ctx context.Context) ([]model.AccountInfo, error)
}

// Handler implements the storefront HTTP API.
type Handler struct {
	cart     Cart
	sessions Sessions
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler instance.
func NewHandler(cart Cart, sessions Sessions, logger *zap.Logger) *Handler {
	return &Handler{
		cart:     cart,
		sessions: sessions,
		logger:   logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// GetProducts returns the catalog, optionally filtered by category or
// featured flag.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var products []model.Product
	switch {
	case q.Get("featured") == "1":
		products = catalog.Featured()
	case q.Get("category") != "":
		products = catalog.ByCategory(model.Category(q.Get("category")))
	default:
		products = catalog.All()
	}

	writeJSON(w, http.StatusOK, products)
}

type cartResponse struct {
	Items       []model.CartLine     `json:"items"`
	ItemCount   int                  `json:"itemCount"`
	Coupon      *model.AppliedCoupon `json:"coupon,omitempty"`
	Subtotal    decimal.Decimal      `json:"subtotal"`
	Discount    decimal.Decimal      `json:"discount"`
	DeliveryFee decimal.Decimal      `json:"deliveryFee"`
	Total       decimal.Decimal      `json:"total"`
}

func deliveryOptionFromQuery(r *http.Request) model.DeliveryOption {
	if model.DeliveryOption(r.URL.Query().Get("delivery")) == model.DeliveryOptionDelivery {
		return model.DeliveryOptionDelivery
	}
	return model.DeliveryOptionPickup
}

// GetCart returns the cart contents and the derived totals. The delivery
// option is taken from the "delivery" query parameter, defaulting to pickup.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	option := deliveryOptionFromQuery(r)

	lines, err := h.cart.Lines(ctx)
	if err != nil {
		h.internalError(w, "get cart", err)
		return
	}
	count, err := h.cart.ItemCount(ctx)
	if err != nil {
		h.internalError(w, "get cart", err)
		return
	}
	coupon, err := h.cart.Coupon(ctx)
	if err != nil {
		h.internalError(w, "get cart", err)
		return
	}
	subtotal, err := h.cart.Subtotal(ctx)
	if err != nil {
		h.internalError(w, "get cart", err)
		return
	}
	discount, err := h.cart.Discount(ctx)
	if err != nil {
		h.internalError(w, "get cart", err)
		return
	}
	total, err := h.cart.Total(ctx, option)
	if err != nil {
		h.internalError(w, "get cart", err)
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{
		Items:       lines,
		ItemCount:   count,
		Coupon:      coupon,
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: h.cart.DeliveryFee(option),
		Total:       total,
	})
}

type addItemRequest struct {
	ProductID int `json:"productId"`
}

// AddCartItem adds one unit of a product to the cart. An unknown product id
// is acknowledged with 204 and no cart change.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	product, err := h.cart.AddItem(r.Context(), req.ProductID)
	if err != nil {
		h.internalError(w, "add cart item", err)
		return
	}

	if product == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("%s adicionado ao carrinho!", product.Name),
	})
}

func productIDFromURL(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "productID"))
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

// ChangeCartItem adds a delta to a line's quantity; dropping to zero or
// below removes the line.
func (h *Handler) ChangeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDFromURL(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.cart.ChangeQuantity(r.Context(), productID, req.Delta); err != nil {
		h.internalError(w, "change cart item", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// RemoveCartItem deletes a line from the cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDFromURL(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.cart.RemoveItem(r.Context(), productID); err != nil {
		h.internalError(w, "remove cart item", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ClearCart removes every line and the applied coupon.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		h.internalError(w, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type couponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon applies a coupon code to the cart.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	applied, err := h.cart.ApplyCoupon(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrEmptyCouponCode):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Digite um código de cupom"})
		case errors.Is(err, cart.ErrUnknownCoupon):
			writeJSON(w, http.StatusUnprocessableEntity, messageResponse{Message: "Cupom inválido"})
		default:
			h.internalError(w, "apply coupon", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, applied)
}

// RemoveCoupon clears the applied coupon.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.RemoveCoupon(r.Context()); err != nil {
		h.internalError(w, "remove coupon", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Checkout places an order from the current cart and clears it.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var form cart.OrderForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	order, err := h.cart.PlaceOrder(r.Context(), form)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrEmptyCart):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Seu carrinho está vazio"})
		case errors.Is(err, cart.ErrInvalidDeliveryOption), errors.Is(err, cart.ErrAddressRequired):
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		default:
			h.internalError(w, "checkout", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetOrders returns the order log.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.cart.Orders(r.Context())
	if err != nil {
		h.internalError(w, "get orders", err)
		return
	}

	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form auth.RegistrationForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if _, err := h.sessions.Register(r.Context(), form); err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeJSON(w, http.StatusConflict, messageResponse{Message: "Este e-mail já está cadastrado"})
		default:
			h.internalError(w, "register", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Cadastro realizado com sucesso!"})
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Login authenticates and stores the session in the scope selected by
// rememberMe. Unknown email and wrong password get the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "E-mail ou senha incorretos"})
			return
		}
		h.internalError(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Logout clears the session from both scopes.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.internalError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetSession returns the active session, or 204 when anonymous.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.CurrentSession(r.Context())
	if err != nil {
		h.internalError(w, "get session", err)
		return
	}

	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// UpdateProfile changes the permitted profile fields of the logged-in user.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update auth.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	session, err := h.sessions.UpdateProfile(r.Context(), update)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotLoggedIn):
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		case errors.Is(err, auth.ErrAccountNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		default:
			h.internalError(w, "update profile", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the logged-in user's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.sessions.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrNotLoggedIn):
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		case errors.Is(err, auth.ErrAccountNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, auth.ErrWrongPassword):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Senha atual incorreta"})
		default:
			h.internalError(w, "change password", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Senha alterada com sucesso!"})
}

// ListAccounts returns every registered account without password hashes.
// The route sits behind the admin guard.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.sessions.ListAccounts(r.Context())
	if err != nil {
		h.internalError(w, "list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" error", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
