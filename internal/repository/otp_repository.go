package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotspot-service/internal/models"
)

// OtpRepository handles database operations for OTP challenges
type OtpRepository struct {
	db *gorm.DB
}

// NewOtpRepository creates a new OTP repository
func NewOtpRepository(db *gorm.DB) *OtpRepository {
	return &OtpRepository{db: db}
}

// ReplaceLive invalidates any live challenge for the (tenant, phone) pair and
// creates the new one in the same transaction. Last-issued-wins: there is
// never more than one live challenge per pair.
func (r *OtpRepository) ReplaceLive(ctx context.Context, challenge *models.OtpChallenge) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OtpChallenge{}).
			Where("tenant_id = ? AND phone = ? AND consumed = ? AND invalidated = ?",
				challenge.TenantID, challenge.Phone, false, false).
			Update("invalidated", true).Error; err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
}

// GetLive retrieves the live (unconsumed, uninvalidated) challenge for a
// pair. Expiry and attempt caps are checked by the caller so each failure
// mode maps to its own error.
func (r *OtpRepository) GetLive(ctx context.Context, tenantID uuid.UUID, phone string) (*models.OtpChallenge, error) {
	var challenge models.OtpChallenge
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ? AND consumed = ? AND invalidated = ?",
			tenantID, phone, false, false).
		Order("created_at DESC").
		First(&challenge).Error
	if err != nil {
		return nil, translate(err)
	}
	return &challenge, nil
}

// GetLatest retrieves the most recent challenge regardless of state
func (r *OtpRepository) GetLatest(ctx context.Context, tenantID uuid.UUID, phone string) (*models.OtpChallenge, error) {
	var challenge models.OtpChallenge
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, phone).
		Order("created_at DESC").
		First(&challenge).Error
	if err != nil {
		return nil, translate(err)
	}
	return &challenge, nil
}

// IncrementAttempts increments the attempt counter and returns the new value
func (r *OtpRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	err := r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("id = ?", id).
		UpdateColumn("attempt_count", gorm.Expr("attempt_count + ?", 1)).Error
	if err != nil {
		return 0, err
	}

	var challenge models.OtpChallenge
	if err := r.db.WithContext(ctx).Select("attempt_count").Where("id = ?", id).First(&challenge).Error; err != nil {
		return 0, translate(err)
	}
	return challenge.AttemptCount, nil
}

// Invalidate marks a challenge as invalidated
func (r *OtpRepository) Invalidate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("id = ?", id).
		Update("invalidated", true).Error
}

// MarkConsumed marks a challenge as consumed so it can never verify twice
func (r *OtpRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("id = ?", id).
		Update("consumed", true).Error
}

// DeleteExpired deletes stale challenges (cleanup, scheduled externally)
func (r *OtpRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().Add(-24*time.Hour)).
		Delete(&models.OtpChallenge{}).Error
}
