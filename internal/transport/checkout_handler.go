package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShippingAddressRequest is the address block of a checkout request
type ShippingAddressRequest struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// CheckoutRequest initiates payment for the user's cart. No amount
// field exists on purpose; the server computes it.
type CheckoutRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required,oneof=stripe paypal"`
}

// CheckoutHandler handles HTTP requests for checkout initiation
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, logger: logger}
}

// RegisterRoutes registers the checkout route behind auth
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.InitiateCheckout)
	})
}

// InitiateCheckout validates the cart and creates a payment intent
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !decodeAndValidate(w, r, h.logger, &req) {
		return
	}

	result, err := h.checkoutService.InitiateCheckout(r.Context(), userID, service.CheckoutInput{
		ShippingAddress: domain.ShippingAddress{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: domain.PaymentGateway(req.PaymentMethod),
	})
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Checkout initiated",
		zap.String("user_id", userID.String()),
		zap.String("payment_intent_id", result.PaymentIntentID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, result)
}
