package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateLimit tracks windowed counters for OTP issuance per phone number or IP
type RateLimit struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Identifier  string         `gorm:"type:varchar(255);not null;index:idx_rate_limits_ident_type,unique" json:"identifier"`
	Type        string         `gorm:"type:varchar(20);not null;index:idx_rate_limits_ident_type,unique" json:"type"`
	Count       int            `gorm:"default:0" json:"count"`
	WindowStart time.Time      `gorm:"not null" json:"window_start"`
	WindowEnd   time.Time      `gorm:"not null;index" json:"window_end"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name
func (RateLimit) TableName() string {
	return "rate_limits"
}

// IsWithinWindow checks if the current time is within the rate limit window
func (r *RateLimit) IsWithinWindow() bool {
	now := time.Now()
	return now.After(r.WindowStart) && now.Before(r.WindowEnd)
}

// ShouldReset checks if the rate limit window should be reset
func (r *RateLimit) ShouldReset() bool {
	return time.Now().After(r.WindowEnd)
}
