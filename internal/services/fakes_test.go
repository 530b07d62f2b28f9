package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hotspot-service/internal/clients"
	"hotspot-service/internal/config"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
)

var errGatewayDown = errors.New("gateway unavailable")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		Otp: config.OtpConfig{
			Length:                6,
			ExpiryMinutes:         5,
			MaxAttempts:           3,
			ResendCooldownSeconds: 60,
			MaxCodesPerHour:       5,
		},
		Flow: config.FlowConfig{
			TTLMinutes: 5,
		},
	}
}

// fakeOtpStore keeps challenges in memory with the same live-challenge
// semantics as the database-backed store.
type fakeOtpStore struct {
	mu         sync.Mutex
	challenges []*models.OtpChallenge
}

func (s *fakeOtpStore) ReplaceLive(ctx context.Context, challenge *models.OtpChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.challenges {
		if c.TenantID == challenge.TenantID && c.Phone == challenge.Phone && !c.Consumed && !c.Invalidated {
			c.Invalidated = true
		}
	}
	s.challenges = append(s.challenges, challenge)
	return nil
}

func (s *fakeOtpStore) GetLive(ctx context.Context, tenantID uuid.UUID, phone string) (*models.OtpChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.challenges) - 1; i >= 0; i-- {
		c := s.challenges[i]
		if c.TenantID == tenantID && c.Phone == phone && !c.Consumed && !c.Invalidated {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeOtpStore) GetLatest(ctx context.Context, tenantID uuid.UUID, phone string) (*models.OtpChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.challenges) - 1; i >= 0; i-- {
		c := s.challenges[i]
		if c.TenantID == tenantID && c.Phone == phone {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeOtpStore) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.challenges {
		if c.ID == id {
			c.AttemptCount++
			return c.AttemptCount, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (s *fakeOtpStore) Invalidate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.challenges {
		if c.ID == id {
			c.Invalidated = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeOtpStore) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.challenges {
		if c.ID == id {
			c.Consumed = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeRateLimiter counts per identifier+type with no window expiry
type fakeRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeRateLimiter() *fakeRateLimiter {
	return &fakeRateLimiter{counts: make(map[string]int)}
}

func (l *fakeRateLimiter) CheckLimit(ctx context.Context, identifier, limitType string, maxCount int, window time.Duration) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := l.counts[identifier+"|"+limitType]
	return count >= maxCount, count, nil
}

func (l *fakeRateLimiter) Increment(ctx context.Context, identifier, limitType string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[identifier+"|"+limitType]++
	return nil
}

// fakeSms records outbound messages and can be forced to fail
type fakeSms struct {
	mu        sync.Mutex
	failSend  bool
	otpCodes  []string
	alerts    []string
	notices   []string
	usernames []string
}

func (s *fakeSms) SendOtpCode(ctx context.Context, tenantID, phone, code string, expiresIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSend {
		return errGatewayDown
	}
	s.otpCodes = append(s.otpCodes, code)
	return nil
}

func (s *fakeSms) SendDeviceChangeAlert(ctx context.Context, tenantID, phone, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, deviceID)
	return nil
}

func (s *fakeSms) SendSuspensionNotice(ctx context.Context, tenantID, phone, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, reason)
	return nil
}

func (s *fakeSms) SendActivationCredentials(ctx context.Context, tenantID, phone, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames = append(s.usernames, username)
	return nil
}

func (s *fakeSms) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.otpCodes) == 0 {
		return ""
	}
	return s.otpCodes[len(s.otpCodes)-1]
}

// fakeAccountStore keeps accounts in memory
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.HotspotAccount
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[uuid.UUID]*models.HotspotAccount)}
}

func (s *fakeAccountStore) Create(ctx context.Context, account *models.HotspotAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *fakeAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*models.HotspotAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *fakeAccountStore) GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*models.HotspotAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.TenantID == tenantID && account.Phone == phone {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeAccountStore) GetByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*models.HotspotAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.TenantID == tenantID && account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeAccountStore) Update(ctx context.Context, account *models.HotspotAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *fakeAccountStore) UpdateSessionBinding(ctx context.Context, id uuid.UUID, binding models.SessionBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	started := binding.StartedAt
	account.CurrentDeviceID = binding.DeviceID
	account.SessionToken = binding.Token
	account.SessionStartedAt = &started
	account.SessionExpiresAt = binding.ExpiresAt
	account.SessionKind = binding.Kind
	return nil
}

func (s *fakeAccountStore) ClearSessionBinding(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.CurrentDeviceID = ""
	account.SessionToken = ""
	account.SessionStartedAt = nil
	account.SessionExpiresAt = nil
	account.SessionKind = ""
	return nil
}

func (s *fakeAccountStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Status = status
	return nil
}

// fakeFlowStore keeps login flows in memory; tokens are the flow IDs
type fakeFlowStore struct {
	mu    sync.Mutex
	flows map[string]*models.LoginFlow
}

func newFakeFlowStore() *fakeFlowStore {
	return &fakeFlowStore{flows: make(map[string]*models.LoginFlow)}
}

func (s *fakeFlowStore) Save(ctx context.Context, flow *models.LoginFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *flow
	s.flows[flow.ID] = &copied
	return nil
}

func (s *fakeFlowStore) Resolve(ctx context.Context, token string) (*models.LoginFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[token]
	if !ok {
		return nil, ErrFlowInvalid
	}
	if flow.IsExpired() {
		return nil, ErrFlowInvalid
	}
	copied := *flow
	return &copied, nil
}

func (s *fakeFlowStore) IssueToken(flow *models.LoginFlow) (string, error) {
	return flow.ID, nil
}

func (s *fakeFlowStore) Delete(ctx context.Context, flowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, flowID)
	return nil
}

// fakeRadius records provisioning calls and can be forced to fail
type fakeRadius struct {
	mu        sync.Mutex
	failPush  bool
	pushes    []clients.RadiusSession
	teardowns []string
}

func (r *fakeRadius) Push(ctx context.Context, session clients.RadiusSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPush {
		return errGatewayDown
	}
	r.pushes = append(r.pushes, session)
	return nil
}

func (r *fakeRadius) Teardown(ctx context.Context, tenantID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardowns = append(r.teardowns, username)
	return nil
}

// fakeLinkGrantStore keeps grants in memory with first-wins consumption
type fakeLinkGrantStore struct {
	mu     sync.Mutex
	grants map[string]*models.LinkLoginGrant
}

func newFakeLinkGrantStore() *fakeLinkGrantStore {
	return &fakeLinkGrantStore{grants: make(map[string]*models.LinkLoginGrant)}
}

func (s *fakeLinkGrantStore) Create(ctx context.Context, grant *models.LinkLoginGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *grant
	s.grants[grant.Token] = &copied
	return nil
}

func (s *fakeLinkGrantStore) GetByToken(ctx context.Context, token string) (*models.LinkLoginGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *grant
	return &copied, nil
}

func (s *fakeLinkGrantStore) Consume(ctx context.Context, grant *models.LinkLoginGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.grants[grant.Token]
	if !ok || stored.ConsumedAt != nil {
		return repository.ErrNotFound
	}
	copied := *grant
	s.grants[grant.Token] = &copied
	return nil
}

// fakeOperatorStore keeps operators keyed by realm
type fakeOperatorStore struct {
	operators map[string]*models.Operator
}

func (s *fakeOperatorStore) GetByRealm(ctx context.Context, realm string) (*models.Operator, error) {
	operator, ok := s.operators[realm]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *operator
	return &copied, nil
}
