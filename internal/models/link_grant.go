package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LinkLoginGrant is a time-boxed, token-based access grant issued by an
// operator for guest or public access. A grant authenticates exactly once:
// the first successful verification marks it consumed.
type LinkLoginGrant struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Token    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"token"`

	DurationMinutes int            `gorm:"not null" json:"duration_minutes"`
	ExpiresAt       time.Time      `gorm:"not null;index" json:"expires_at"`
	Metadata        datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	ConsumedAt   *time.Time `json:"consumed_at,omitempty"`
	DeviceID     string     `gorm:"type:varchar(17)" json:"device_id,omitempty"`
	ClientIP     string     `gorm:"type:varchar(45)" json:"client_ip,omitempty"`
	SessionID    string     `gorm:"type:varchar(64)" json:"session_id,omitempty"`
	SessionUntil *time.Time `json:"session_until,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name
func (LinkLoginGrant) TableName() string {
	return "link_login_grants"
}

// BeforeCreate hook to generate UUID
func (g *LinkLoginGrant) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// IsExpired checks if the grant window has closed
func (g *LinkLoginGrant) IsExpired() bool {
	return !time.Now().Before(g.ExpiresAt)
}

// IsConsumed checks if the grant has already authenticated a device
func (g *LinkLoginGrant) IsConsumed() bool {
	return g.ConsumedAt != nil
}
