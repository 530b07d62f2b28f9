package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FlowState is the explicit state of one login attempt. The flow replaces the
// ambient per-request session bag: it lives server-side in a short-TTL store
// and the client only holds a signed reference to it.
type FlowState string

const (
	FlowAwaitingOtp    FlowState = "awaiting_otp"
	FlowOtpVerified    FlowState = "otp_verified"
	FlowDeviceConflict FlowState = "device_conflict"
	FlowEstablished    FlowState = "established"
	FlowRejected       FlowState = "rejected"
)

// LoginFlow is the finite-state-machine value object for a single login
// attempt, keyed by flow id.
type LoginFlow struct {
	ID        string    `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	AccountID uuid.UUID `json:"account_id"`
	Phone     string    `json:"phone"`
	State     FlowState `json:"state"`

	// DeviceID is the fingerprint of the device that passed OTP verification.
	// PendingDeviceID holds it while a conflict with the stored binding is
	// awaiting explicit resolution.
	DeviceID        string `json:"device_id,omitempty"`
	PendingDeviceID string `json:"pending_device_id,omitempty"`

	ClientIP  string    `json:"client_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewLoginFlow starts a flow in the awaiting_otp state
func NewLoginFlow(tenantID, accountID uuid.UUID, phone, clientIP string, ttl time.Duration) *LoginFlow {
	now := time.Now()
	return &LoginFlow{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		AccountID: accountID,
		Phone:     phone,
		State:     FlowAwaitingOtp,
		ClientIP:  clientIP,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired checks whether the flow window has closed. Pending device
// conflicts expire with the flow rather than lingering indefinitely.
func (f *LoginFlow) IsExpired() bool {
	return time.Now().After(f.ExpiresAt)
}

// MarkOtpVerified transitions awaiting_otp -> otp_verified
func (f *LoginFlow) MarkOtpVerified(deviceID string) error {
	if f.State != FlowAwaitingOtp {
		return fmt.Errorf("cannot verify OTP in state %q", f.State)
	}
	f.State = FlowOtpVerified
	f.DeviceID = deviceID
	return nil
}

// MarkConflict transitions otp_verified -> device_conflict, parking the
// connecting device until the user explicitly forces the login.
func (f *LoginFlow) MarkConflict() error {
	if f.State != FlowOtpVerified {
		return fmt.Errorf("cannot record device conflict in state %q", f.State)
	}
	f.State = FlowDeviceConflict
	f.PendingDeviceID = f.DeviceID
	return nil
}

// MarkEstablished transitions otp_verified or device_conflict -> established
func (f *LoginFlow) MarkEstablished() error {
	if f.State != FlowOtpVerified && f.State != FlowDeviceConflict {
		return fmt.Errorf("cannot establish session in state %q", f.State)
	}
	f.State = FlowEstablished
	return nil
}

// MarkRejected moves the flow to its terminal failure state
func (f *LoginFlow) MarkRejected() {
	f.State = FlowRejected
}
