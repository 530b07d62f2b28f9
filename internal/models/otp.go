package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OtpChallenge represents a one-time password issued to a phone number. Only
// the SHA-256 hash of the code is stored; issuing a new challenge for the
// same (tenant, phone) pair invalidates the previous one.
type OtpChallenge struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID     uuid.UUID `gorm:"type:uuid;not null;index:idx_otp_tenant_phone" json:"tenant_id"`
	Phone        string    `gorm:"type:varchar(32);not null;index:idx_otp_tenant_phone" json:"phone"`
	CodeHash     string    `gorm:"type:varchar(64);not null" json:"-"`
	RequestIP    string    `gorm:"type:varchar(45)" json:"request_ip"`
	IssuedAt     time.Time `gorm:"not null" json:"issued_at"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	Consumed     bool      `gorm:"default:false" json:"consumed"`
	Invalidated  bool      `gorm:"default:false" json:"invalidated"`
	AttemptCount int       `gorm:"default:0" json:"attempt_count"`
	MaxAttempts  int       `gorm:"default:3" json:"max_attempts"`

	// CodeMasked is set transiently on issue for portal display; never stored.
	CodeMasked string `gorm:"-" json:"-"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name
func (OtpChallenge) TableName() string {
	return "otp_challenges"
}

// BeforeCreate hook to generate UUID
func (c *OtpChallenge) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsExpired checks if the challenge has expired
func (c *OtpChallenge) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsLive checks whether the challenge can still be verified
func (c *OtpChallenge) IsLive() bool {
	return !c.Consumed && !c.Invalidated && !c.IsExpired() && c.AttemptCount < c.MaxAttempts
}
