package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotspot-service/internal/config"
	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
	"hotspot-service/pkg/otp"
)

// OtpStore is the persistence boundary for OTP challenges
type OtpStore interface {
	ReplaceLive(ctx context.Context, challenge *models.OtpChallenge) error
	GetLive(ctx context.Context, tenantID uuid.UUID, phone string) (*models.OtpChallenge, error)
	GetLatest(ctx context.Context, tenantID uuid.UUID, phone string) (*models.OtpChallenge, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	Invalidate(ctx context.Context, id uuid.UUID) error
	MarkConsumed(ctx context.Context, id uuid.UUID) error
}

// OtpRateLimiter tracks windowed issue counters per identifier
type OtpRateLimiter interface {
	CheckLimit(ctx context.Context, identifier, limitType string, maxCount int, window time.Duration) (bool, int, error)
	Increment(ctx context.Context, identifier, limitType string) error
}

// SmsSender is the outbound SMS collaborator boundary
type SmsSender interface {
	SendOtpCode(ctx context.Context, tenantID, phone, code string, expiresIn time.Duration) error
	SendDeviceChangeAlert(ctx context.Context, tenantID, phone, deviceID string) error
	SendSuspensionNotice(ctx context.Context, tenantID, phone, reason string) error
	SendActivationCredentials(ctx context.Context, tenantID, phone, username string) error
}

// OtpService issues, rate-limits and verifies one-time codes per phone
// number, scoped per tenant.
type OtpService struct {
	cfg       *config.Config
	store     OtpStore
	limiter   OtpRateLimiter
	sms       SmsSender
	generator *otp.Generator
	logger    *logrus.Entry
}

// NewOtpService creates a new OTP service
func NewOtpService(cfg *config.Config, store OtpStore, limiter OtpRateLimiter, sms SmsSender, logger *logrus.Logger) *OtpService {
	return &OtpService{
		cfg:       cfg,
		store:     store,
		limiter:   limiter,
		sms:       sms,
		generator: otp.NewGenerator(cfg.Otp.Length),
		logger:    logger.WithField("component", "services.otp"),
	}
}

// RequestChallenge invalidates any prior live challenge for the pair, issues
// a new code and dispatches it. The challenge is committed before dispatch;
// a delivery failure is surfaced as ErrSmsDelivery without discarding it, so
// the caller can resend on the same flow.
func (s *OtpService) RequestChallenge(ctx context.Context, tenantID uuid.UUID, phone, ip string) (*models.OtpChallenge, error) {
	exceeded, _, err := s.limiter.CheckLimit(ctx, phone, "otp_send", s.cfg.Otp.MaxCodesPerHour, time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if exceeded {
		return nil, ErrOtpRateLimited
	}

	code, err := s.generator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := time.Now()
	challenge := &models.OtpChallenge{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Phone:       phone,
		CodeHash:    otp.Hash(code),
		RequestIP:   ip,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.cfg.GetOTPExpiry()),
		MaxAttempts: s.cfg.Otp.MaxAttempts,
		CodeMasked:  otp.MaskCode(code),
	}

	if err := s.store.ReplaceLive(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	if err := s.limiter.Increment(ctx, phone, "otp_send"); err != nil {
		s.logger.WithError(err).Warn("Failed to increment rate limit counter")
	}

	metrics.OtpIssued.WithLabelValues("request").Inc()

	if err := s.sms.SendOtpCode(ctx, tenantID.String(), phone, code, s.cfg.GetOTPExpiry()); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"phone":     maskPhone(phone),
		}).Error("OTP dispatch failed")
		return challenge, fmt.Errorf("%w: %v", ErrSmsDelivery, err)
	}

	return challenge, nil
}

// ResendChallenge re-issues a challenge, subject to a cooldown window since
// the last issuance.
func (s *OtpService) ResendChallenge(ctx context.Context, tenantID uuid.UUID, phone, ip string) (*models.OtpChallenge, error) {
	latest, err := s.store.GetLatest(ctx, tenantID, phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load latest challenge: %w", err)
	}

	if latest != nil && time.Since(latest.IssuedAt) < s.cfg.GetResendCooldown() {
		return nil, ErrOtpRateLimited
	}

	challenge, err := s.RequestChallenge(ctx, tenantID, phone, ip)
	if err != nil {
		return challenge, err
	}

	metrics.OtpIssued.WithLabelValues("resend").Inc()
	return challenge, nil
}

// Verify checks a submitted code against the live challenge for the pair. A
// consumed challenge can never verify twice; exhausting the attempt cap
// invalidates the challenge until a new one is issued.
func (s *OtpService) Verify(ctx context.Context, tenantID uuid.UUID, phone, code, ip string) error {
	challenge, err := s.store.GetLive(ctx, tenantID, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.OtpVerifications.WithLabelValues("not_found").Inc()
			return ErrOtpNotFound
		}
		return fmt.Errorf("failed to load challenge: %w", err)
	}

	if challenge.IsExpired() {
		if err := s.store.Invalidate(ctx, challenge.ID); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate expired challenge")
		}
		metrics.OtpVerifications.WithLabelValues("expired").Inc()
		return ErrOtpExpired
	}

	if challenge.AttemptCount >= challenge.MaxAttempts {
		if err := s.store.Invalidate(ctx, challenge.ID); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate exhausted challenge")
		}
		metrics.OtpVerifications.WithLabelValues("exhausted").Inc()
		return ErrOtpAttemptsExhausted
	}

	if otp.Hash(otp.NormalizeCode(code)) != challenge.CodeHash {
		attempts, err := s.store.IncrementAttempts(ctx, challenge.ID)
		if err != nil {
			return fmt.Errorf("failed to increment attempts: %w", err)
		}
		if attempts >= challenge.MaxAttempts {
			if err := s.store.Invalidate(ctx, challenge.ID); err != nil {
				s.logger.WithError(err).Warn("Failed to invalidate exhausted challenge")
			}
			metrics.OtpVerifications.WithLabelValues("exhausted").Inc()
			return ErrOtpAttemptsExhausted
		}
		metrics.OtpVerifications.WithLabelValues("mismatch").Inc()
		return ErrOtpMismatch
	}

	if err := s.store.MarkConsumed(ctx, challenge.ID); err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}

	metrics.OtpVerifications.WithLabelValues("success").Inc()
	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"phone":     maskPhone(phone),
		"ip":        ip,
	}).Info("OTP verified")
	return nil
}

// maskPhone masks a phone number for logging (privacy)
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	masked := make([]byte, len(phone)-4)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + phone[len(phone)-4:]
}
