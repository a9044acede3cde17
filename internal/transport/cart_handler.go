package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest identifies a variant and the quantity to add
type AddToCartRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid4"`
	VariantName  string `json:"variant_name" validate:"required"`
	VariantValue string `json:"variant_value" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest sets an absolute quantity for an existing item
type UpdateCartItemRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid4"`
	VariantName  string `json:"variant_name" validate:"required"`
	VariantValue string `json:"variant_value" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, logger: logger}
}

// RegisterRoutes registers all cart routes; everything requires auth
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddToCart)
		r.Put("/items", h.UpdateCartItem)
		r.Delete("/items/{itemID}", h.RemoveFromCart)
	})
}

// requestUserID pulls the authenticated user's id out of the context
func requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "missing authentication")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "invalid user identity")
		return uuid.Nil, false
	}
	return userID, true
}

// GetCart returns the user's cart, empty if none exists yet
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddToCart adds a variant to the cart, merging duplicates by quantity
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	cart, err := h.cartService.AddToCart(r.Context(), userID, service.AddToCartInput{
		ProductID:    productID,
		VariantName:  req.VariantName,
		VariantValue: req.VariantValue,
		Quantity:     req.Quantity,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// UpdateCartItem sets the quantity of an existing cart item
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	cart, err := h.cartService.UpdateCartItem(r.Context(), userID, service.UpdateCartItemInput{
		ProductID:    productID,
		VariantName:  req.VariantName,
		VariantValue: req.VariantValue,
		Quantity:     req.Quantity,
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// RemoveFromCart deletes one item by its id
func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	cart, err := h.cartService.RemoveFromCart(r.Context(), userID, itemID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}
