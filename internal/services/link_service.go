package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"hotspot-service/internal/clients"
	"hotspot-service/internal/events"
	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
)

// LinkGrantStore is the persistence boundary for link login grants
type LinkGrantStore interface {
	Create(ctx context.Context, grant *models.LinkLoginGrant) error
	GetByToken(ctx context.Context, token string) (*models.LinkLoginGrant, error)
	Consume(ctx context.Context, grant *models.LinkLoginGrant) error
}

// LinkService implements time-boxed, token-based guest logins. Grants are
// single-use: the first successful verification consumes the token.
type LinkService struct {
	grants LinkGrantStore
	radius RadiusSyncer
	logger *logrus.Entry
}

// NewLinkService creates a new link login service
func NewLinkService(grants LinkGrantStore, radius RadiusSyncer, logger *logrus.Logger) *LinkService {
	return &LinkService{
		grants: grants,
		radius: radius,
		logger: logger.WithField("component", "services.link"),
	}
}

// Generate creates a grant valid for the given duration
func (s *LinkService) Generate(ctx context.Context, tenantID uuid.UUID, durationMinutes int, metadata map[string]interface{}) (*models.LinkLoginGrant, error) {
	var meta datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		meta = datatypes.JSON(raw)
	}

	now := time.Now()
	grant := &models.LinkLoginGrant{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Token:           uuid.New().String(),
		DurationMinutes: durationMinutes,
		ExpiresAt:       now.Add(time.Duration(durationMinutes) * time.Minute),
		Metadata:        meta,
	}

	if err := s.grants.Create(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to create grant: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"duration":  durationMinutes,
	}).Info("Link login grant created")
	return grant, nil
}

// Verify redeems a grant for a device. Unknown or consumed tokens are
// invalid; tokens at or past their expiry never authenticate. The session it
// opens ends at the grant expiry regardless of activity.
func (s *LinkService) Verify(ctx context.Context, token, deviceID, ip string) (*models.LinkLoginResultResponse, error) {
	grant, err := s.grants.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LinkLogins.WithLabelValues("invalid").Inc()
			return nil, ErrLinkTokenInvalid
		}
		return nil, fmt.Errorf("failed to load grant: %w", err)
	}

	if grant.IsConsumed() {
		metrics.LinkLogins.WithLabelValues("invalid").Inc()
		return nil, ErrLinkTokenInvalid
	}
	if grant.IsExpired() {
		metrics.LinkLogins.WithLabelValues("expired").Inc()
		return nil, ErrLinkTokenExpired
	}

	now := time.Now()
	sessionUntil := grant.ExpiresAt
	grant.ConsumedAt = &now
	grant.DeviceID = deviceID
	grant.ClientIP = ip
	grant.SessionID = uuid.New().String()
	grant.SessionUntil = &sessionUntil

	if err := s.grants.Consume(ctx, grant); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the redemption race to another device.
			metrics.LinkLogins.WithLabelValues("invalid").Inc()
			return nil, ErrLinkTokenInvalid
		}
		return nil, fmt.Errorf("failed to consume grant: %w", err)
	}

	if err := s.radius.Push(ctx, clients.RadiusSession{
		TenantID:     grant.TenantID.String(),
		Username:     "link-" + grant.Token[:8],
		SessionToken: grant.SessionID,
		DeviceID:     deviceID,
		ExpiresAt:    &sessionUntil,
	}); err != nil {
		metrics.RadiusSyncFailures.Inc()
		s.logger.WithError(err).Warn("RADIUS push failed for link session")
	}

	metrics.LinkLogins.WithLabelValues("success").Inc()
	events.GetPublisher().Publish(events.SubjectLinkLoginVerified, grant.TenantID.String(), map[string]interface{}{
		"grant_id": grant.ID.String(),
		"device":   deviceID,
	})

	return &models.LinkLoginResultResponse{
		Allow:     true,
		SessionID: grant.SessionID,
		ExpiresAt: &sessionUntil,
		Message:   "link login accepted",
	}, nil
}
