package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription status values for a hotspot account
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusExpired   = "expired"
)

// Session kinds stored on the account binding
const (
	SessionKindStandard  = "standard"
	SessionKindLink      = "link"
	SessionKindFederated = "federated"
)

// HotspotAccount represents a captive-portal subscriber. The session binding
// columns (device id, token, timestamps) are the single source of truth for
// "who is currently logged in" — at most one binding is live per account and
// rebinding rewrites all of them in one UPDATE.
type HotspotAccount struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index:idx_accounts_tenant_phone,unique" json:"tenant_id"`
	Phone        string    `gorm:"type:varchar(32);not null;index:idx_accounts_tenant_phone,unique" json:"phone"`
	Username     string    `gorm:"type:varchar(64);not null;index" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"`

	PackageID *uuid.UUID `gorm:"type:uuid;index" json:"package_id,omitempty"`
	Status    string     `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	IsVerified bool       `gorm:"default:false" json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	CurrentDeviceID  string     `gorm:"type:varchar(17)" json:"current_device_id,omitempty"`
	SessionToken     string     `gorm:"type:varchar(64);index" json:"-"`
	SessionStartedAt *time.Time `json:"session_started_at,omitempty"`
	SessionExpiresAt *time.Time `json:"session_expires_at,omitempty"`
	SessionKind      string     `gorm:"type:varchar(20)" json:"session_kind,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name
func (HotspotAccount) TableName() string {
	return "hotspot_accounts"
}

// BeforeCreate hook to generate UUID
func (a *HotspotAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// IsExpired checks whether the subscription has lapsed. A null expiry means
// the package never expires.
func (a *HotspotAccount) IsExpired() bool {
	return a.ExpiresAt != nil && time.Now().After(*a.ExpiresAt)
}

// CanLogin checks whether the account is allowed to start a login flow
func (a *HotspotAccount) CanLogin() bool {
	return a.IsVerified && a.Status == StatusActive && !a.IsExpired()
}

// HasSession reports whether a session binding is present and not past its
// own expiry (time-boxed link sessions carry one, standard sessions do not).
func (a *HotspotAccount) HasSession() bool {
	if a.SessionToken == "" {
		return false
	}
	if a.SessionExpiresAt != nil && time.Now().After(*a.SessionExpiresAt) {
		return false
	}
	return true
}

// SessionBinding is the value written atomically on bind
type SessionBinding struct {
	DeviceID  string
	Token     string
	StartedAt time.Time
	ExpiresAt *time.Time
	Kind      string
}
