package models

import (
	"time"

	"github.com/google/uuid"
)

// APIResponse is the standard API response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// OtpChallengeResponse is returned after issuing or re-issuing a challenge
type OtpChallengeResponse struct {
	FlowToken  string    `json:"flow_token"`
	CodeMasked string    `json:"code_masked"`
	ExpiresAt  time.Time `json:"expires_at"`
	ExpiresIn  int       `json:"expires_in_seconds"`
}

// LoginResultResponse is returned after OTP verification or force login
type LoginResultResponse struct {
	State        FlowState `json:"state"`
	AccountID    uuid.UUID `json:"account_id,omitempty"`
	DeviceID     string    `json:"device_id,omitempty"`
	SessionToken string    `json:"session_token,omitempty"`
	FlowToken    string    `json:"flow_token,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// SessionStatusResponse reports the result of a session validation
type SessionStatusResponse struct {
	Valid    bool   `json:"valid"`
	DeviceID string `json:"device_id,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// LinkLoginGrantResponse is returned when an operator creates a grant
type LinkLoginGrantResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LinkLoginResultResponse is returned when a grant is redeemed
type LinkLoginResultResponse struct {
	Allow     bool       `json:"allow"`
	SessionID string     `json:"session_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// FederationLookupResponse is the result of a cross-operator username lookup
type FederationLookupResponse struct {
	Federated    bool   `json:"federated"`
	HomeOperator string `json:"home_operator,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	AllowLogin   bool   `json:"allow_login"`
	Message      string `json:"message,omitempty"`
}
