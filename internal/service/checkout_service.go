package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"storefront/internal/domain"
	"storefront/internal/payment"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutInput carries the client-supplied parts of a checkout request.
// The amount is never among them.
type CheckoutInput struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentGateway
}

// CheckoutResult is returned to the client to complete payment.
type CheckoutResult struct {
	ClientSecret    string    `json:"client_secret"`
	PaymentIntentID uuid.UUID `json:"payment_intent_id"`
}

// CheckoutService turns a cart into a gateway charge request. Stock and
// prices are re-resolved from the catalog at checkout time, so neither
// a stale cart snapshot nor a client-controlled figure can reach the
// gateway. No stock is reserved: between this check and capture an
// oversell is still possible, which gateway reconciliation absorbs.
type CheckoutService interface {
	InitiateCheckout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
}

type checkoutService struct {
	carts       CartService
	productRepo repository.ProductRepository
	intentRepo  repository.PaymentIntentRepository
	gateway     payment.Gateway
	currency    string
	logger      *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	carts CartService,
	productRepo repository.ProductRepository,
	intentRepo repository.PaymentIntentRepository,
	gateway payment.Gateway,
	currency string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		carts:       carts,
		productRepo: productRepo,
		intentRepo:  intentRepo,
		gateway:     gateway,
		currency:    currency,
		logger:      logger,
	}
}

// InitiateCheckout validates the cart, computes the authoritative total,
// creates a gateway payment intent, and persists the durable record.
func (s *checkoutService) InitiateCheckout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart for checkout: %w", err)
	}

	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	total, err := s.validateAndTotal(ctx, cart)
	if err != nil {
		return nil, err
	}

	if input.PaymentMethod != domain.GatewayStripe {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPaymentMethod, input.PaymentMethod)
	}

	amountMinor := int64(math.Round(total * 100))
	metadata := map[string]string{
		"userId": userID.String(),
		"cartId": cart.ID.String(),
	}

	gatewayIntent, err := s.gateway.CreatePaymentIntent(ctx, amountMinor, s.currency, metadata)
	if err != nil {
		s.logger.Error("Payment gateway call failed",
			zap.String("user_id", userID.String()),
			zap.Int64("amount_minor", amountMinor),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	if gatewayIntent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: gateway returned no client secret", ErrGatewayFailure)
	}

	now := time.Now()
	record := &domain.PaymentIntent{
		ID:              uuid.New(),
		UserID:          userID,
		Gateway:         input.PaymentMethod,
		Status:          domain.PaymentStatusPending,
		Amount:          total,
		ShippingAddress: input.ShippingAddress,
		GatewayResponse: gatewayIntent.Raw,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.intentRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist payment intent: %w", err)
	}

	s.logger.Info("Checkout initiated",
		zap.String("user_id", userID.String()),
		zap.String("payment_intent_id", record.ID.String()),
		zap.Float64("amount", total),
	)

	return &CheckoutResult{
		ClientSecret:    gatewayIntent.ClientSecret,
		PaymentIntentID: record.ID,
	}, nil
}

// validateAndTotal re-checks every item's stock and sums current
// catalog prices. Cart snapshots are ignored on purpose: this is the
// authoritative pass that closes the window between add-to-cart and
// payment.
func (s *checkoutService) validateAndTotal(ctx context.Context, cart *domain.Cart) (float64, error) {
	total := 0.0

	for i := range cart.Items {
		item := &cart.Items[i]

		variant, err := s.productRepo.FindVariant(ctx, item.ProductID, item.VariantName, item.VariantValue)
		if err != nil {
			if err == repository.ErrProductNotFound || err == repository.ErrVariantNotFound {
				return 0, &InsufficientStockError{
					ProductID:    item.ProductID,
					VariantName:  item.VariantName,
					VariantValue: item.VariantValue,
					Requested:    item.Quantity,
					Available:    0,
				}
			}
			return 0, fmt.Errorf("failed to resolve variant at checkout: %w", err)
		}

		if variant.Stock < item.Quantity {
			return 0, &InsufficientStockError{
				ProductID:    item.ProductID,
				VariantName:  item.VariantName,
				VariantValue: item.VariantValue,
				Requested:    item.Quantity,
				Available:    variant.Stock,
			}
		}

		if variant.Price <= 0 {
			return 0, &PriceResolutionError{
				ProductID:    item.ProductID,
				VariantName:  item.VariantName,
				VariantValue: item.VariantValue,
			}
		}

		total += variant.Price * float64(item.Quantity)
	}

	return total, nil
}
