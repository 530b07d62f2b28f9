package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotspot-service/internal/clients"
	"hotspot-service/internal/config"
	"hotspot-service/internal/events"
	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
	"hotspot-service/pkg/fingerprint"
)

// RadiusSyncer is the RADIUS provisioning collaborator boundary
type RadiusSyncer interface {
	Push(ctx context.Context, session clients.RadiusSession) error
	Teardown(ctx context.Context, tenantID, username string) error
}

// LoginResult is the outcome of a verify or force-login step
type LoginResult struct {
	State        models.FlowState
	AccountID    uuid.UUID
	DeviceID     string
	SessionToken string
	FlowToken    string
	Message      string
}

// LoginService orchestrates login scenarios: the OTP flow, device-conflict
// resolution, and logout. Flow state lives server-side in the FlowStore; the
// portal only ever holds a signed flow token.
type LoginService struct {
	cfg      *config.Config
	accounts AccountStore
	otp      *OtpService
	sessions *SessionService
	flows    FlowStore
	radius   RadiusSyncer
	sms      SmsSender
	logger   *logrus.Entry
}

// NewLoginService creates a new login orchestrator
func NewLoginService(
	cfg *config.Config,
	accounts AccountStore,
	otpService *OtpService,
	sessions *SessionService,
	flows FlowStore,
	radius RadiusSyncer,
	sms SmsSender,
	logger *logrus.Logger,
) *LoginService {
	return &LoginService{
		cfg:      cfg,
		accounts: accounts,
		otp:      otpService,
		sessions: sessions,
		flows:    flows,
		radius:   radius,
		sms:      sms,
		logger:   logger.WithField("component", "services.login"),
	}
}

// StartLogin validates the account and opens a flow in awaiting_otp. No OTP
// record is created for unregistered or inactive accounts.
func (s *LoginService) StartLogin(ctx context.Context, tenantID uuid.UUID, phone, ip string) (string, *models.OtpChallenge, error) {
	account, err := s.accounts.GetByPhone(ctx, tenantID, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrNotRegistered
		}
		return "", nil, fmt.Errorf("failed to load account: %w", err)
	}

	if !account.IsVerified || account.Status == models.StatusPending {
		return "", nil, fmt.Errorf("%w: account is awaiting activation", ErrAccountInactive)
	}
	if account.Status == models.StatusSuspended {
		return "", nil, fmt.Errorf("%w: account is currently suspended", ErrAccountInactive)
	}
	if account.Status == models.StatusExpired || account.IsExpired() {
		return "", nil, fmt.Errorf("%w: subscription has expired", ErrAccountInactive)
	}

	challenge, err := s.otp.RequestChallenge(ctx, tenantID, phone, ip)
	if err != nil && !errors.Is(err, ErrSmsDelivery) {
		return "", nil, err
	}
	smsErr := err

	flow := models.NewLoginFlow(tenantID, account.ID, phone, ip, s.cfg.GetFlowTTL())
	if err := s.flows.Save(ctx, flow); err != nil {
		return "", nil, fmt.Errorf("failed to save flow: %w", err)
	}

	token, err := s.flows.IssueToken(flow)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue flow token: %w", err)
	}

	return token, challenge, smsErr
}

// ResendOtp re-issues the challenge for a flow still awaiting its code
func (s *LoginService) ResendOtp(ctx context.Context, flowToken, ip string) (*models.OtpChallenge, error) {
	flow, err := s.flows.Resolve(ctx, flowToken)
	if err != nil {
		return nil, err
	}
	if flow.State != models.FlowAwaitingOtp {
		return nil, ErrFlowInvalid
	}

	return s.otp.ResendChallenge(ctx, flow.TenantID, flow.Phone, ip)
}

// VerifyOtp verifies the code, resolves the connecting device and either
// establishes the session or parks the flow in device_conflict. OTP
// consumption commits regardless of what the conflict check decides.
func (s *LoginService) VerifyOtp(ctx context.Context, flowToken, code, ip, userAgent string) (*LoginResult, error) {
	flow, err := s.flows.Resolve(ctx, flowToken)
	if err != nil {
		return nil, err
	}

	switch flow.State {
	case models.FlowAwaitingOtp:
	case models.FlowDeviceConflict:
		return s.conflictResult(flow, flowToken), ErrDeviceConflictPending
	default:
		return nil, ErrFlowInvalid
	}

	if err := s.otp.Verify(ctx, flow.TenantID, flow.Phone, code, ip); err != nil {
		return nil, err
	}

	deviceID := fingerprint.Resolve(ip, userAgent)
	if err := flow.MarkOtpVerified(deviceID); err != nil {
		return nil, ErrFlowInvalid
	}

	account, err := s.accounts.GetByID(ctx, flow.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account.HasSession() && account.CurrentDeviceID != deviceID {
		if err := flow.MarkConflict(); err != nil {
			return nil, ErrFlowInvalid
		}
		if err := s.flows.Save(ctx, flow); err != nil {
			return nil, fmt.Errorf("failed to save flow: %w", err)
		}

		metrics.DeviceConflicts.Inc()
		events.GetPublisher().Publish(events.SubjectDeviceConflict, flow.TenantID.String(), map[string]interface{}{
			"account_id":     flow.AccountID.String(),
			"bound_device":   account.CurrentDeviceID,
			"pending_device": deviceID,
		})
		s.logger.WithFields(logrus.Fields{
			"account_id":     flow.AccountID,
			"bound_device":   account.CurrentDeviceID,
			"pending_device": deviceID,
		}).Info("Device conflict detected")

		return s.conflictResult(flow, flowToken), ErrDeviceConflictPending
	}

	return s.establish(ctx, flow, account, deviceID)
}

// ForceLogin resolves a pending device conflict by atomically rebinding the
// session to the pending device. Only valid from the device_conflict state.
func (s *LoginService) ForceLogin(ctx context.Context, flowToken string) (*LoginResult, error) {
	flow, err := s.flows.Resolve(ctx, flowToken)
	if err != nil {
		return nil, err
	}
	if flow.State != models.FlowDeviceConflict || flow.PendingDeviceID == "" {
		return nil, ErrFlowInvalid
	}

	account, err := s.accounts.GetByID(ctx, flow.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	result, err := s.establish(ctx, flow, account, flow.PendingDeviceID)
	if err != nil {
		return nil, err
	}

	// Alert the subscriber on the takeover; best effort.
	if smsErr := s.sms.SendDeviceChangeAlert(ctx, flow.TenantID.String(), flow.Phone, flow.PendingDeviceID); smsErr != nil {
		s.logger.WithError(smsErr).Warn("Device change alert failed")
	}

	return result, nil
}

// Logout clears the binding and tears down the RADIUS accounting session.
// Idempotent: logging out an already-logged-out account is a no-op success.
func (s *LoginService) Logout(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotRegistered
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	if account.SessionToken == "" {
		return nil
	}

	if err := s.sessions.Clear(ctx, accountID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if err := s.radius.Teardown(ctx, account.TenantID.String(), account.Username); err != nil {
		metrics.RadiusSyncFailures.Inc()
		s.logger.WithError(err).WithField("account_id", accountID).Warn("RADIUS teardown failed")
	}

	events.GetPublisher().Publish(events.SubjectSessionCleared, account.TenantID.String(), map[string]interface{}{
		"account_id": accountID.String(),
	})
	return nil
}

// establish commits the binding and mirrors it into RADIUS. The local bind
// is authoritative; a failed push degrades the result message but never
// rolls the session back.
func (s *LoginService) establish(ctx context.Context, flow *models.LoginFlow, account *models.HotspotAccount, deviceID string) (*LoginResult, error) {
	token, err := s.sessions.Bind(ctx, account.ID, deviceID)
	if err != nil {
		return nil, err
	}

	if err := flow.MarkEstablished(); err != nil {
		return nil, ErrFlowInvalid
	}
	if err := s.flows.Delete(ctx, flow.ID); err != nil {
		s.logger.WithError(err).Warn("Failed to delete finished flow")
	}

	result := &LoginResult{
		State:        models.FlowEstablished,
		AccountID:    account.ID,
		DeviceID:     deviceID,
		SessionToken: token,
		Message:      "session established",
	}

	if err := s.radius.Push(ctx, clients.RadiusSession{
		TenantID:     account.TenantID.String(),
		Username:     account.Username,
		SessionToken: token,
		DeviceID:     deviceID,
	}); err != nil {
		metrics.RadiusSyncFailures.Inc()
		s.logger.WithError(err).WithField("account_id", account.ID).Warn("RADIUS push failed")
		result.Message = "session established; radius sync degraded"
	}

	events.GetPublisher().Publish(events.SubjectSessionEstablished, account.TenantID.String(), map[string]interface{}{
		"account_id": account.ID.String(),
		"device":     deviceID,
	})
	return result, nil
}

func (s *LoginService) conflictResult(flow *models.LoginFlow, flowToken string) *LoginResult {
	return &LoginResult{
		State:     models.FlowDeviceConflict,
		AccountID: flow.AccountID,
		DeviceID:  flow.PendingDeviceID,
		FlowToken: flowToken,
		Message:   "account is active on another device",
	}
}
