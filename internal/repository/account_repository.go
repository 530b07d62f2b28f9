package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotspot-service/internal/models"
)

// AccountRepository handles database operations for hotspot accounts
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.HotspotAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID retrieves an account by id
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.HotspotAccount, error) {
	var account models.HotspotAccount
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByPhone retrieves an account by phone number within a tenant
func (r *AccountRepository) GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*models.HotspotAccount, error) {
	var account models.HotspotAccount
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, phone).
		First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByUsername retrieves an account by username within a tenant
func (r *AccountRepository) GetByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*models.HotspotAccount, error) {
	var account models.HotspotAccount
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND username = ?", tenantID, username).
		First(&account).Error
	if err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// Update saves account fields
func (r *AccountRepository) Update(ctx context.Context, account *models.HotspotAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// UpdateSessionBinding rewrites the session columns in a single UPDATE. The
// one-session-per-account invariant rests on this being one atomic row
// update: device id and token are never written separately.
func (r *AccountRepository) UpdateSessionBinding(ctx context.Context, id uuid.UUID, binding models.SessionBinding) error {
	return r.db.WithContext(ctx).Model(&models.HotspotAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_device_id":  binding.DeviceID,
			"session_token":      binding.Token,
			"session_started_at": binding.StartedAt,
			"session_expires_at": binding.ExpiresAt,
			"session_kind":       binding.Kind,
		}).Error
}

// ClearSessionBinding removes the session columns on logout
func (r *AccountRepository) ClearSessionBinding(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.HotspotAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_device_id":  "",
			"session_token":      "",
			"session_started_at": nil,
			"session_expires_at": nil,
			"session_kind":       "",
		}).Error
}

// UpdateStatus sets the subscription status
func (r *AccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&models.HotspotAccount{}).
		Where("id = ?", id).
		Update("status", status).Error
}
