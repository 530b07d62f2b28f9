package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hotspot-service/internal/models"
)

func newTestAccountService() (*AccountService, *fakeAccountStore, *fakeSms, *fakeRadius) {
	accounts := newFakeAccountStore()
	sms := &fakeSms{}
	radius := &fakeRadius{}
	sessions := NewSessionService(accounts, testLogger())
	svc := NewAccountService(accounts, sessions, sms, radius, testLogger())
	return svc, accounts, sms, radius
}

func TestRegister(t *testing.T) {
	svc, _, sms, _ := newTestAccountService()
	ctx := context.Background()

	account, err := svc.Register(ctx, &models.RegisterAccountRequest{
		TenantID: uuid.New(),
		Phone:    "+15551230001",
		Username: "subscriber1",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if account.Status != models.StatusPending {
		t.Errorf("Expected pending status, got %q", account.Status)
	}
	if account.IsVerified {
		t.Error("Expected new account to be unverified")
	}
	if account.PasswordHash == "hunter22" {
		t.Error("Expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("hunter22")); err != nil {
		t.Errorf("Expected bcrypt hash of the password, got %v", err)
	}

	if len(sms.usernames) != 1 || sms.usernames[0] != "subscriber1" {
		t.Errorf("Expected activation credentials SMS, got %v", sms.usernames)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestAccountService()
	ctx := context.Background()
	tenantID := uuid.New()

	req := &models.RegisterAccountRequest{
		TenantID: tenantID,
		Phone:    "+15551230001",
		Username: "subscriber1",
		Password: "hunter22",
	}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err := svc.Register(ctx, req)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestActivate(t *testing.T) {
	svc, accounts, _, _ := newTestAccountService()
	ctx := context.Background()

	account, err := svc.Register(ctx, &models.RegisterAccountRequest{
		TenantID: uuid.New(),
		Phone:    "+15551230001",
		Username: "subscriber1",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expiry := time.Now().AddDate(0, 1, 0)
	if err := svc.Activate(ctx, account.ID, &expiry); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	activated, _ := accounts.GetByID(ctx, account.ID)
	if !activated.CanLogin() {
		t.Error("Expected activated account to be able to log in")
	}
	if activated.VerifiedAt == nil {
		t.Error("Expected verification timestamp")
	}
}

func TestRenew(t *testing.T) {
	svc, accounts, _, _ := newTestAccountService()
	ctx := context.Background()

	account, _ := svc.Register(ctx, &models.RegisterAccountRequest{
		TenantID: uuid.New(),
		Phone:    "+15551230001",
		Username: "subscriber1",
		Password: "hunter22",
	})

	// Renewal of a lapsed subscription runs from now.
	past := time.Now().Add(-48 * time.Hour)
	stored, _ := accounts.GetByID(ctx, account.ID)
	stored.Status = models.StatusExpired
	stored.ExpiresAt = &past
	_ = accounts.Update(ctx, stored)

	if err := svc.Renew(ctx, account.ID, 30); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	renewed, _ := accounts.GetByID(ctx, account.ID)
	if renewed.Status != models.StatusActive {
		t.Errorf("Expected renewal to reactivate, got %q", renewed.Status)
	}
	remaining := time.Until(*renewed.ExpiresAt)
	if remaining < 29*24*time.Hour || remaining > 30*24*time.Hour {
		t.Errorf("Expected roughly 30 days from now, got %v", remaining)
	}

	// Renewal of a live subscription extends from the current expiry.
	if err := svc.Renew(ctx, account.ID, 30); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	extended, _ := accounts.GetByID(ctx, account.ID)
	remaining = time.Until(*extended.ExpiresAt)
	if remaining < 59*24*time.Hour || remaining > 60*24*time.Hour {
		t.Errorf("Expected roughly 60 days from now, got %v", remaining)
	}
}

func TestSuspend_TearsDownSession(t *testing.T) {
	svc, accounts, sms, radius := newTestAccountService()
	ctx := context.Background()

	account, _ := svc.Register(ctx, &models.RegisterAccountRequest{
		TenantID: uuid.New(),
		Phone:    "+15551230001",
		Username: "subscriber1",
		Password: "hunter22",
	})
	if err := svc.Activate(ctx, account.ID, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	sessions := NewSessionService(accounts, testLogger())
	if _, err := sessions.Bind(ctx, account.ID, "02:AA:BB:CC:DD:EE"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.Suspend(ctx, account.ID, "nonpayment"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	suspended, _ := accounts.GetByID(ctx, account.ID)
	if suspended.Status != models.StatusSuspended {
		t.Errorf("Expected suspended status, got %q", suspended.Status)
	}
	if suspended.HasSession() {
		t.Error("Expected session to be cleared")
	}
	if len(radius.teardowns) != 1 {
		t.Errorf("Expected RADIUS teardown, got %d", len(radius.teardowns))
	}
	if len(sms.notices) != 1 || sms.notices[0] != "nonpayment" {
		t.Errorf("Expected suspension notice, got %v", sms.notices)
	}

	// Suspending twice is a no-op.
	if err := svc.Suspend(ctx, account.ID, "nonpayment"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(sms.notices) != 1 {
		t.Error("Expected no second notice")
	}
}
