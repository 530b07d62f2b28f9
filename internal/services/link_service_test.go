package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestLinkService() (*LinkService, *fakeLinkGrantStore, *fakeRadius) {
	grants := newFakeLinkGrantStore()
	radius := &fakeRadius{}
	svc := NewLinkService(grants, radius, testLogger())
	return svc, grants, radius
}

func TestLinkGenerate(t *testing.T) {
	svc, _, _ := newTestLinkService()
	ctx := context.Background()

	grant, err := svc.Generate(ctx, uuid.New(), 30, map[string]interface{}{"room": "101"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if grant.Token == "" {
		t.Error("Expected a token")
	}
	if grant.IsExpired() {
		t.Error("Expected fresh grant to not be expired")
	}

	remaining := time.Until(grant.ExpiresAt)
	if remaining > 30*time.Minute || remaining < 29*time.Minute {
		t.Errorf("Expected roughly 30 minutes of validity, got %v", remaining)
	}
}

func TestLinkVerify(t *testing.T) {
	svc, _, radius := newTestLinkService()
	ctx := context.Background()

	grant, err := svc.Generate(ctx, uuid.New(), 30, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result, err := svc.Verify(ctx, grant.Token, "02:AA:BB:CC:DD:EE", "10.0.0.5")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.Allow {
		t.Error("Expected login to be allowed")
	}
	if result.SessionID == "" {
		t.Error("Expected a session ID")
	}

	// The session ends at the grant expiry, not some fresh window.
	if result.ExpiresAt == nil || !result.ExpiresAt.Equal(grant.ExpiresAt) {
		t.Errorf("Expected session to end at grant expiry %v, got %v", grant.ExpiresAt, result.ExpiresAt)
	}

	if len(radius.pushes) != 1 {
		t.Fatalf("Expected one RADIUS push, got %d", len(radius.pushes))
	}
	if radius.pushes[0].DeviceID != "02:AA:BB:CC:DD:EE" {
		t.Errorf("Expected device in RADIUS session, got %q", radius.pushes[0].DeviceID)
	}
}

func TestLinkVerify_SingleUse(t *testing.T) {
	svc, _, _ := newTestLinkService()
	ctx := context.Background()

	grant, err := svc.Generate(ctx, uuid.New(), 30, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := svc.Verify(ctx, grant.Token, "02:AA:BB:CC:DD:EE", "10.0.0.5"); err != nil {
		t.Fatalf("Expected first redemption to succeed, got %v", err)
	}

	_, err = svc.Verify(ctx, grant.Token, "02:11:22:33:44:55", "10.0.0.6")
	if !errors.Is(err, ErrLinkTokenInvalid) {
		t.Errorf("Expected consumed token to be invalid, got %v", err)
	}
}

func TestLinkVerify_Expired(t *testing.T) {
	svc, grants, _ := newTestLinkService()
	ctx := context.Background()

	grant, err := svc.Generate(ctx, uuid.New(), 30, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stored := grants.grants[grant.Token]
	stored.ExpiresAt = time.Now().Add(-time.Second)

	_, err = svc.Verify(ctx, grant.Token, "02:AA:BB:CC:DD:EE", "10.0.0.5")
	if !errors.Is(err, ErrLinkTokenExpired) {
		t.Errorf("Expected ErrLinkTokenExpired, got %v", err)
	}
}

func TestLinkVerify_ExpiryBoundary(t *testing.T) {
	svc, grants, _ := newTestLinkService()
	ctx := context.Background()

	grant, err := svc.Generate(ctx, uuid.New(), 30, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Exactly at the expiry instant the token no longer authenticates.
	stored := grants.grants[grant.Token]
	stored.ExpiresAt = time.Now()

	_, err = svc.Verify(ctx, grant.Token, "02:AA:BB:CC:DD:EE", "10.0.0.5")
	if !errors.Is(err, ErrLinkTokenExpired) {
		t.Errorf("Expected token at expiry instant to be expired, got %v", err)
	}
}

func TestLinkVerify_UnknownToken(t *testing.T) {
	svc, _, _ := newTestLinkService()

	_, err := svc.Verify(context.Background(), "no-such-token", "02:AA:BB:CC:DD:EE", "10.0.0.5")
	if !errors.Is(err, ErrLinkTokenInvalid) {
		t.Errorf("Expected ErrLinkTokenInvalid, got %v", err)
	}
}
