package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WishlistItemRequest identifies a product variant to save or remove
type WishlistItemRequest struct {
	ProductID    string `json:"product_id" validate:"required,uuid4"`
	VariantName  string `json:"variant_name" validate:"required"`
	VariantValue string `json:"variant_value" validate:"required"`
}

// WishlistHandler handles HTTP requests for wishlist operations
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService, logger: logger}
}

// RegisterRoutes registers all wishlist routes; everything requires auth
func (h *WishlistHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/v1/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetWishlist)
		r.Post("/items", h.AddProduct)
		r.Delete("/items", h.RemoveProduct)
		r.Delete("/", h.ClearWishlist)
	})
}

// GetWishlist returns the user's wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	wl, err := h.wishlistService.GetWishlist(r.Context(), userID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, wl)
}

// AddProduct saves a product variant to the wishlist
func (h *WishlistHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req WishlistItemRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	wl, err := h.wishlistService.AddProduct(r.Context(), userID, productID, req.VariantName, req.VariantValue)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, wl)
}

// RemoveProduct drops a product variant from the wishlist
func (h *WishlistHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req WishlistItemRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	wl, err := h.wishlistService.RemoveProduct(r.Context(), userID, productID, req.VariantName, req.VariantValue)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, wl)
}

// ClearWishlist removes every saved item
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	if err := h.wishlistService.ClearWishlist(r.Context(), userID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "wishlist cleared"})
}
