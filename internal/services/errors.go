package services

import "errors"

// Typed outcomes for the login pipeline. Handlers map these to HTTP statuses
// and user-facing messages; they are never swallowed.
var (
	// Account checks
	ErrNotRegistered     = errors.New("phone number is not registered")
	ErrAccountInactive   = errors.New("account is not active")
	ErrAlreadyRegistered = errors.New("phone number is already registered")

	// OTP engine
	ErrOtpNotFound          = errors.New("no active verification code")
	ErrOtpExpired           = errors.New("verification code has expired")
	ErrOtpMismatch          = errors.New("verification code does not match")
	ErrOtpAttemptsExhausted = errors.New("verification attempts exhausted")
	ErrOtpRateLimited       = errors.New("too many verification codes requested")

	// Sessions and flows
	ErrSessionStale          = errors.New("session token or device mismatch")
	ErrDeviceConflictPending = errors.New("login pending device conflict resolution")
	ErrFlowInvalid           = errors.New("login flow is invalid or expired")

	// Link login
	ErrLinkTokenInvalid = errors.New("link login token is invalid")
	ErrLinkTokenExpired = errors.New("link login token has expired")

	// Collaborator failures; a distinct category so callers can decide
	// whether to treat them as fatal. Local state is never rolled back
	// because of them.
	ErrSmsDelivery = errors.New("sms delivery failed")
	ErrRadiusSync  = errors.New("radius sync failed")
)
