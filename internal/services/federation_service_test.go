package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"hotspot-service/internal/models"
)

func newTestFederationService(tenantID uuid.UUID) (*FederationService, *fakeAccountStore) {
	accounts := newFakeAccountStore()
	operators := &fakeOperatorStore{
		operators: map[string]*models.Operator{
			"partner.net": {
				ID:        uuid.New(),
				TenantID:  uuid.New(),
				Name:      "Partner ISP",
				Realm:     "partner.net",
				PortalURL: "https://portal.partner.net/login",
				Active:    true,
			},
			"home.net": {
				ID:        uuid.New(),
				TenantID:  tenantID,
				Name:      "Home ISP",
				Realm:     "home.net",
				PortalURL: "https://portal.home.net/login",
				Active:    true,
			},
		},
	}
	return NewFederationService(operators, accounts, testLogger()), accounts
}

func TestCrossRadiusLookup_ForeignRealm(t *testing.T) {
	tenantID := uuid.New()
	svc, _ := newTestFederationService(tenantID)

	resp, err := svc.CrossRadiusLookup(context.Background(), tenantID, "guest@partner.net")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !resp.Federated {
		t.Error("Expected a federated result")
	}
	if resp.AllowLogin {
		t.Error("Expected local login to be refused for a foreign realm")
	}
	if resp.HomeOperator != "Partner ISP" {
		t.Errorf("Expected home operator name, got %q", resp.HomeOperator)
	}
	if !strings.HasPrefix(resp.RedirectURL, "https://portal.partner.net/login?username=") {
		t.Errorf("Expected redirect to the home portal, got %q", resp.RedirectURL)
	}
	if !strings.Contains(resp.RedirectURL, "guest%40partner.net") {
		t.Errorf("Expected username escaped in redirect, got %q", resp.RedirectURL)
	}
}

func TestCrossRadiusLookup_UnknownRealm(t *testing.T) {
	tenantID := uuid.New()
	svc, _ := newTestFederationService(tenantID)

	resp, err := svc.CrossRadiusLookup(context.Background(), tenantID, "guest@nowhere.example")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Federated {
		t.Error("Expected unknown realm to not federate")
	}
	if resp.AllowLogin {
		t.Error("Expected login to be refused")
	}
}

func TestCrossRadiusLookup_OwnRealmFallsThroughLocally(t *testing.T) {
	tenantID := uuid.New()
	svc, accounts := newTestFederationService(tenantID)

	account := &models.HotspotAccount{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Phone:      "+15551230001",
		Username:   "subscriber1",
		Status:     models.StatusActive,
		IsVerified: true,
	}
	if err := accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A realm owned by this tenant is handled as a local login.
	resp, err := svc.CrossRadiusLookup(context.Background(), tenantID, "subscriber1@home.net")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.Federated {
		t.Error("Expected own realm to stay local")
	}
	if !resp.AllowLogin {
		t.Errorf("Expected login allowed, got message %q", resp.Message)
	}
}

func TestCrossRadiusLookup_LocalUsername(t *testing.T) {
	tenantID := uuid.New()
	svc, accounts := newTestFederationService(tenantID)

	account := &models.HotspotAccount{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Phone:      "+15551230001",
		Username:   "subscriber1",
		Status:     models.StatusActive,
		IsVerified: true,
	}
	if err := accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	resp, err := svc.CrossRadiusLookup(context.Background(), tenantID, "subscriber1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !resp.AllowLogin {
		t.Errorf("Expected login allowed for active local account, got %q", resp.Message)
	}
}

func TestCrossRadiusLookup_LocalInactive(t *testing.T) {
	tenantID := uuid.New()
	svc, accounts := newTestFederationService(tenantID)

	account := &models.HotspotAccount{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Phone:      "+15551230001",
		Username:   "subscriber1",
		Status:     models.StatusSuspended,
		IsVerified: true,
	}
	if err := accounts.Create(context.Background(), account); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	resp, err := svc.CrossRadiusLookup(context.Background(), tenantID, "subscriber1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.AllowLogin {
		t.Error("Expected suspended account to be refused")
	}
}

func TestCrossRadiusLookup_LocalUnknown(t *testing.T) {
	tenantID := uuid.New()
	svc, _ := newTestFederationService(tenantID)

	resp, err := svc.CrossRadiusLookup(context.Background(), tenantID, "ghost")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if resp.AllowLogin {
		t.Error("Expected unknown username to be refused")
	}
	if resp.Federated {
		t.Error("Expected a realm-less username to stay local")
	}
}
