package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hotspot-service/internal/models"
)

// LinkGrantRepository handles database operations for link login grants
type LinkGrantRepository struct {
	db *gorm.DB
}

// NewLinkGrantRepository creates a new link grant repository
func NewLinkGrantRepository(db *gorm.DB) *LinkGrantRepository {
	return &LinkGrantRepository{db: db}
}

// Create creates a new grant
func (r *LinkGrantRepository) Create(ctx context.Context, grant *models.LinkLoginGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

// GetByToken retrieves a grant by its opaque token
func (r *LinkGrantRepository) GetByToken(ctx context.Context, token string) (*models.LinkLoginGrant, error) {
	var grant models.LinkLoginGrant
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&grant).Error
	if err != nil {
		return nil, translate(err)
	}
	return &grant, nil
}

// Consume marks a grant as redeemed by a device. The consumed_at guard in the
// WHERE clause makes redemption first-wins under concurrent verification.
func (r *LinkGrantRepository) Consume(ctx context.Context, grant *models.LinkLoginGrant) error {
	res := r.db.WithContext(ctx).Model(&models.LinkLoginGrant{}).
		Where("id = ? AND consumed_at IS NULL", grant.ID).
		Updates(map[string]interface{}{
			"consumed_at":   grant.ConsumedAt,
			"device_id":     grant.DeviceID,
			"client_ip":     grant.ClientIP,
			"session_id":    grant.SessionID,
			"session_until": grant.SessionUntil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired deletes grants past their window (cleanup, scheduled externally)
func (r *LinkGrantRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().Add(-24*time.Hour)).
		Delete(&models.LinkLoginGrant{}).Error
}
