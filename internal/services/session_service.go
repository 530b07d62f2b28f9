package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
)

// AccountStore is the persistence boundary for hotspot accounts
type AccountStore interface {
	Create(ctx context.Context, account *models.HotspotAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.HotspotAccount, error)
	GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*models.HotspotAccount, error)
	GetByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*models.HotspotAccount, error)
	Update(ctx context.Context, account *models.HotspotAccount) error
	UpdateSessionBinding(ctx context.Context, id uuid.UUID, binding models.SessionBinding) error
	ClearSessionBinding(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// SessionService owns the account session binding: one live (device, token)
// pair per account, rewritten atomically on bind. Last bind wins; there is
// deliberately no optimistic lock, which is acceptable at captive-portal
// contention levels.
type SessionService struct {
	accounts AccountStore
	logger   *logrus.Entry
}

// NewSessionService creates a new session service
func NewSessionService(accounts AccountStore, logger *logrus.Logger) *SessionService {
	return &SessionService{
		accounts: accounts,
		logger:   logger.WithField("component", "services.session"),
	}
}

// Bind issues a fresh unguessable token and rewrites the account's binding.
// This is the sole mutation path for "who is currently logged in".
func (s *SessionService) Bind(ctx context.Context, accountID uuid.UUID, deviceID string) (string, error) {
	return s.bind(ctx, accountID, deviceID, models.SessionKindStandard, nil)
}

// BindTimeBoxed binds with an absolute expiry, used for link and federated
// sessions that end at a fixed instant regardless of activity.
func (s *SessionService) BindTimeBoxed(ctx context.Context, accountID uuid.UUID, deviceID, kind string, expiresAt time.Time) (string, error) {
	return s.bind(ctx, accountID, deviceID, kind, &expiresAt)
}

func (s *SessionService) bind(ctx context.Context, accountID uuid.UUID, deviceID, kind string, expiresAt *time.Time) (string, error) {
	token := uuid.New().String()
	binding := models.SessionBinding{
		DeviceID:  deviceID,
		Token:     token,
		StartedAt: time.Now(),
		ExpiresAt: expiresAt,
		Kind:      kind,
	}

	if err := s.accounts.UpdateSessionBinding(ctx, accountID, binding); err != nil {
		return "", fmt.Errorf("failed to bind session: %w", err)
	}

	metrics.SessionsBound.WithLabelValues(kind).Inc()
	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"device":     deviceID,
		"kind":       kind,
	}).Info("Session bound")
	return token, nil
}

// Current returns the account's live binding, or nil when logged out
func (s *SessionService) Current(ctx context.Context, accountID uuid.UUID) (*models.SessionBinding, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.HasSession() {
		return nil, nil
	}

	binding := &models.SessionBinding{
		DeviceID:  account.CurrentDeviceID,
		Token:     account.SessionToken,
		ExpiresAt: account.SessionExpiresAt,
		Kind:      account.SessionKind,
	}
	if account.SessionStartedAt != nil {
		binding.StartedAt = *account.SessionStartedAt
	}
	return binding, nil
}

// Validate checks a presented (token, device) pair against the stored
// binding. Token and device must BOTH match: either mismatch alone marks the
// session stale and clears it, forcing re-authentication. The double check is
// what defeats replay of a stolen token from a different device.
func (s *SessionService) Validate(ctx context.Context, accountID uuid.UUID, token, deviceID string) error {
	binding, err := s.Current(ctx, accountID)
	if err != nil {
		return err
	}

	if binding == nil || binding.Token != token || binding.DeviceID != deviceID {
		if err := s.accounts.ClearSessionBinding(ctx, accountID); err != nil {
			s.logger.WithError(err).Warn("Failed to clear stale session")
		}
		return ErrSessionStale
	}

	return nil
}

// Clear removes the binding. Clearing an already-logged-out account is a
// no-op success.
func (s *SessionService) Clear(ctx context.Context, accountID uuid.UUID) error {
	return s.accounts.ClearSessionBinding(ctx, accountID)
}
