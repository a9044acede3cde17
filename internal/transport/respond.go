package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"go.uber.org/zap"
)

// respondServiceError maps business errors to 4xx responses with a
// message naming the offending resource, and everything else to an
// opaque 500. Infrastructure detail never reaches the client.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var stockErr *service.InsufficientStockError
	var priceErr *service.PriceResolutionError

	switch {
	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrVariantNotFound),
		errors.Is(err, repository.ErrCartNotFound),
		errors.Is(err, repository.ErrCartItemNotFound),
		errors.Is(err, repository.ErrWishlistItemNotFound),
		errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrCategoryAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.As(err, &stockErr):
		middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
	case errors.As(err, &priceErr):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, priceErr.Error())
	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrUnsupportedPaymentMethod):
		middleware.RespondWithError(w, http.StatusBadRequest, "payment method not supported")
	case errors.Is(err, service.ErrGatewayFailure):
		logger.Error("Payment gateway failure", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "payment provider unavailable")
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeAndValidate wraps the shared middleware helper, translating
// validation failures into the standard error envelope. Returns false
// when a response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
