package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
)

// AccountService owns the hotspot account lifecycle: registration,
// activation after payment/verification, renewal, suspension.
type AccountService struct {
	accounts AccountStore
	sessions *SessionService
	sms      SmsSender
	radius   RadiusSyncer
	logger   *logrus.Entry
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountStore, sessions *SessionService, sms SmsSender, radius RadiusSyncer, logger *logrus.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		sessions: sessions,
		sms:      sms,
		radius:   radius,
		logger:   logger.WithField("component", "services.account"),
	}
}

// Register creates a pending account and sends the activation credentials
func (s *AccountService) Register(ctx context.Context, req *models.RegisterAccountRequest) (*models.HotspotAccount, error) {
	existing, err := s.accounts.GetByPhone(ctx, req.TenantID, req.Phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.HotspotAccount{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		Phone:        req.Phone,
		Username:     req.Username,
		PasswordHash: string(hash),
		PackageID:    req.PackageID,
		Status:       models.StatusPending,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.sms.SendActivationCredentials(ctx, req.TenantID.String(), req.Phone, req.Username); err != nil {
		s.logger.WithError(err).Warn("Activation credentials SMS failed")
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  req.TenantID,
		"account_id": account.ID,
	}).Info("Account registered")
	return account, nil
}

// Activate marks an account verified and active, with an optional
// subscription expiry from the purchased package.
func (s *AccountService) Activate(ctx context.Context, accountID uuid.UUID, expiresAt *time.Time) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotRegistered
		}
		return err
	}

	now := time.Now()
	account.Status = models.StatusActive
	account.IsVerified = true
	account.VerifiedAt = &now
	account.ExpiresAt = expiresAt

	return s.accounts.Update(ctx, account)
}

// Renew extends the subscription window. Extension runs from the current
// expiry when it is still in the future, otherwise from now.
func (s *AccountService) Renew(ctx context.Context, accountID uuid.UUID, days int) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotRegistered
		}
		return err
	}

	base := time.Now()
	if account.ExpiresAt != nil && account.ExpiresAt.After(base) {
		base = *account.ExpiresAt
	}
	expiry := base.AddDate(0, 0, days)

	account.ExpiresAt = &expiry
	if account.Status == models.StatusExpired {
		account.Status = models.StatusActive
	}

	return s.accounts.Update(ctx, account)
}

// Suspend deactivates the account, tears down any live session and notifies
// the subscriber. Suspension of an already-suspended account is a no-op.
func (s *AccountService) Suspend(ctx context.Context, accountID uuid.UUID, reason string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotRegistered
		}
		return err
	}

	if account.Status == models.StatusSuspended {
		return nil
	}

	if err := s.accounts.UpdateStatus(ctx, accountID, models.StatusSuspended); err != nil {
		return fmt.Errorf("failed to suspend account: %w", err)
	}

	if account.SessionToken != "" {
		if err := s.sessions.Clear(ctx, accountID); err != nil {
			s.logger.WithError(err).Warn("Failed to clear session on suspension")
		}
		if err := s.radius.Teardown(ctx, account.TenantID.String(), account.Username); err != nil {
			s.logger.WithError(err).Warn("RADIUS teardown failed on suspension")
		}
	}

	if err := s.sms.SendSuspensionNotice(ctx, account.TenantID.String(), account.Phone, reason); err != nil {
		s.logger.WithError(err).Warn("Suspension notice SMS failed")
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"reason":     reason,
	}).Info("Account suspended")
	return nil
}
