package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"storefront/internal/cache"

	"go.uber.org/zap"
)

// OTPSender delivers a one-time code to the user. Email transport lives
// behind this interface; the service only generates, stores, and
// verifies codes.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

// OTPService manages one-time passwords stored in the cache with a TTL.
type OTPService interface {
	GenerateAndSend(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (bool, error)
}

type otpService struct {
	cache  *cache.Store
	sender OTPSender
	ttl    time.Duration
	logger *zap.Logger
}

// NewOTPService creates a new instance of OTPService
func NewOTPService(cacheStore *cache.Store, sender OTPSender, ttl time.Duration, logger *zap.Logger) OTPService {
	return &otpService{
		cache:  cacheStore,
		sender: sender,
		ttl:    ttl,
		logger: logger,
	}
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

// GenerateAndSend stores a fresh 6-digit code under the user's email and
// hands it to the sender. A new code overwrites any outstanding one.
func (s *otpService) GenerateAndSend(ctx context.Context, email string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	if err := s.cache.SetString(ctx, otpKey(email), code, s.ttl); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("failed to send otp: %w", err)
	}

	s.logger.Info("OTP issued", zap.String("email", email))
	return nil
}

// Verify compares the supplied code against the stored one and deletes
// it on success, so each code is single-use.
func (s *otpService) Verify(ctx context.Context, email, code string) (bool, error) {
	key := otpKey(email)

	stored, found, err := s.cache.GetString(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read otp: %w", err)
	}
	if !found || stored != code {
		return false, nil
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}

	return true, nil
}

// LogOTPSender writes codes to the application log instead of delivering
// them. Development default; production wires a real mail sender behind
// the same interface.
type LogOTPSender struct {
	logger *zap.Logger
}

// NewLogOTPSender creates a sender that only logs.
func NewLogOTPSender(logger *zap.Logger) *LogOTPSender {
	return &LogOTPSender{logger: logger}
}

// SendOTP logs the code instead of emailing it.
func (s *LogOTPSender) SendOTP(ctx context.Context, email, code string) error {
	s.logger.Info("OTP generated (log delivery)",
		zap.String("email", email),
		zap.String("code", code),
	)
	return nil
}
