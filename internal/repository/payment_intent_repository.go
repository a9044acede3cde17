package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var ErrPaymentIntentNotFound = errors.New("payment intent not found")

// PaymentIntentRepository defines the interface for payment intent data
// access. Records are append-only apart from status transitions driven
// by gateway confirmations.
type PaymentIntentRepository interface {
	Create(ctx context.Context, intent *domain.PaymentIntent) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PaymentIntent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentIntentStatus) error
}

type paymentIntentRepository struct {
	db *sql.DB
}

// NewPaymentIntentRepository creates a new instance of PaymentIntentRepository
func NewPaymentIntentRepository(db *sql.DB) PaymentIntentRepository {
	return &paymentIntentRepository{db: db}
}

// Create persists the durable record of a checkout attempt
func (r *paymentIntentRepository) Create(ctx context.Context, intent *domain.PaymentIntent) error {
	query := `
		INSERT INTO payment_intents (id, user_id, gateway, status, amount, street, city, state, postal_code, country, gateway_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		intent.ID,
		intent.UserID,
		intent.Gateway,
		intent.Status,
		intent.Amount,
		intent.ShippingAddress.Street,
		intent.ShippingAddress.City,
		intent.ShippingAddress.State,
		intent.ShippingAddress.PostalCode,
		intent.ShippingAddress.Country,
		[]byte(intent.GatewayResponse),
		intent.CreatedAt,
		intent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment intent: %w", err)
	}

	return nil
}

// FindByID retrieves a payment intent record
func (r *paymentIntentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.PaymentIntent, error) {
	query := `
		SELECT id, user_id, gateway, status, amount, street, city, state, postal_code, country, gateway_response, created_at, updated_at
		FROM payment_intents
		WHERE id = $1
	`

	intent := &domain.PaymentIntent{}
	var response []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&intent.ID,
		&intent.UserID,
		&intent.Gateway,
		&intent.Status,
		&intent.Amount,
		&intent.ShippingAddress.Street,
		&intent.ShippingAddress.City,
		&intent.ShippingAddress.State,
		&intent.ShippingAddress.PostalCode,
		&intent.ShippingAddress.Country,
		&response,
		&intent.CreatedAt,
		&intent.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentIntentNotFound
		}
		return nil, fmt.Errorf("failed to find payment intent: %w", err)
	}
	intent.GatewayResponse = response

	return intent, nil
}

// UpdateStatus transitions a payment intent to a new status
func (r *paymentIntentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentIntentStatus) error {
	query := `
		UPDATE payment_intents
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update payment intent status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPaymentIntentNotFound
	}

	return nil
}
