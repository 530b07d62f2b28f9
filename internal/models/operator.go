package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Operator maps a RADIUS realm to the tenant that owns it. Usernames carrying
// a foreign realm are federated out to the home operator's portal instead of
// being authenticated locally.
type Operator struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	Realm     string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"realm"`
	PortalURL string    `gorm:"type:varchar(255);not null" json:"portal_url"`
	Active    bool      `gorm:"default:true" json:"active"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name
func (Operator) TableName() string {
	return "operators"
}

// BeforeCreate hook to generate UUID
func (o *Operator) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
