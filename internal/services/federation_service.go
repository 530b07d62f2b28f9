package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotspot-service/internal/events"
	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
)

// OperatorStore is the persistence boundary for federated operator realms
type OperatorStore interface {
	GetByRealm(ctx context.Context, realm string) (*models.Operator, error)
}

// FederationService resolves usernames that belong to another operator's
// namespace. Foreign realms are redirected to the home operator's portal
// instead of being authenticated locally; every federated attempt is
// audit-logged.
type FederationService struct {
	operators OperatorStore
	accounts  AccountStore
	logger    *logrus.Entry
}

// NewFederationService creates a new federation service
func NewFederationService(operators OperatorStore, accounts AccountStore, logger *logrus.Logger) *FederationService {
	return &FederationService{
		operators: operators,
		accounts:  accounts,
		logger:    logger.WithField("component", "services.federation"),
	}
}

// CrossRadiusLookup resolves a username of the form "user@realm". A foreign
// realm yields a federation redirect; a local or realm-less username falls
// through to local existence and activity checks.
func (s *FederationService) CrossRadiusLookup(ctx context.Context, tenantID uuid.UUID, username string) (*models.FederationLookupResponse, error) {
	local, realm, hasRealm := strings.Cut(username, "@")

	if hasRealm && realm != "" {
		operator, err := s.operators.GetByRealm(ctx, realm)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				metrics.FederationLookups.WithLabelValues("unknown").Inc()
				s.audit(tenantID, username, realm, "unknown_realm")
				return &models.FederationLookupResponse{
					Federated:  false,
					AllowLogin: false,
					Message:    "operator realm is not recognized",
				}, nil
			}
			return nil, fmt.Errorf("failed to look up realm: %w", err)
		}

		if operator.TenantID != tenantID {
			metrics.FederationLookups.WithLabelValues("federated").Inc()
			s.audit(tenantID, username, realm, "federated")
			events.GetPublisher().Publish(events.SubjectFederationLookup, tenantID.String(), map[string]interface{}{
				"username":      username,
				"home_operator": operator.Name,
			})

			redirect := operator.PortalURL + "?username=" + url.QueryEscape(username)
			return &models.FederationLookupResponse{
				Federated:    true,
				HomeOperator: operator.Name,
				RedirectURL:  redirect,
				AllowLogin:   false,
				Message:      "account belongs to " + operator.Name,
			}, nil
		}
	}

	account, err := s.accounts.GetByUsername(ctx, tenantID, local)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.FederationLookups.WithLabelValues("unknown").Inc()
			return &models.FederationLookupResponse{
				Federated:  false,
				AllowLogin: false,
				Message:    "login is not available for this username",
			}, nil
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	metrics.FederationLookups.WithLabelValues("local").Inc()
	if !account.CanLogin() {
		return &models.FederationLookupResponse{
			Federated:  false,
			AllowLogin: false,
			Message:    "account is not currently active",
		}, nil
	}

	return &models.FederationLookupResponse{
		Federated:  false,
		AllowLogin: true,
	}, nil
}

// audit records a federated attempt; mandatory regardless of outcome
func (s *FederationService) audit(tenantID uuid.UUID, username, realm, outcome string) {
	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"username":  username,
		"realm":     realm,
		"outcome":   outcome,
		"audit":     true,
	}).Info("Federated lookup")
}
