package models

import "github.com/google/uuid"

// RequestOtpRequest starts a login flow by issuing an OTP challenge
type RequestOtpRequest struct {
	Phone    string    `json:"phone" binding:"required"`
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
}

// VerifyOtpRequest verifies the code for a pending login flow
type VerifyOtpRequest struct {
	FlowToken string `json:"flow_token" binding:"required"`
	Code      string `json:"code" binding:"required"`
}

// ResendOtpRequest re-issues the challenge for a pending login flow
type ResendOtpRequest struct {
	FlowToken string `json:"flow_token" binding:"required"`
}

// ForceLoginRequest resolves a device conflict by taking over the session
type ForceLoginRequest struct {
	FlowToken string `json:"flow_token" binding:"required"`
}

// ValidateSessionRequest checks a session token + device pair
type ValidateSessionRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	Token     string    `json:"token" binding:"required"`
	DeviceID  string    `json:"device_id" binding:"required"`
}

// LogoutRequest tears down the account's session
type LogoutRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
}

// GenerateLinkLoginRequest creates a time-boxed guest access grant
type GenerateLinkLoginRequest struct {
	TenantID        uuid.UUID              `json:"tenant_id" binding:"required"`
	DurationMinutes int                    `json:"duration_minutes" binding:"required,min=1,max=1440"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// VerifyLinkLoginRequest redeems a link login token
type VerifyLinkLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterAccountRequest creates a new hotspot account
type RegisterAccountRequest struct {
	TenantID  uuid.UUID  `json:"tenant_id" binding:"required"`
	Phone     string     `json:"phone" binding:"required"`
	Username  string     `json:"username" binding:"required"`
	Password  string     `json:"password" binding:"required,min=6"`
	PackageID *uuid.UUID `json:"package_id,omitempty"`
}

// RenewAccountRequest extends an account's subscription
type RenewAccountRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	Days      int       `json:"days" binding:"required,min=1"`
}

// SuspendAccountRequest suspends an account and tears down its session
type SuspendAccountRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
	Reason    string    `json:"reason,omitempty"`
}
