package repository

import (
	"context"

	"gorm.io/gorm"

	"hotspot-service/internal/models"
)

// OperatorRepository handles database operations for federated operators
type OperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository creates a new operator repository
func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// GetByRealm retrieves an active operator by its RADIUS realm
func (r *OperatorRepository) GetByRealm(ctx context.Context, realm string) (*models.Operator, error) {
	var operator models.Operator
	err := r.db.WithContext(ctx).
		Where("realm = ? AND active = ?", realm, true).
		First(&operator).Error
	if err != nil {
		return nil, translate(err)
	}
	return &operator, nil
}

// Create creates a new operator mapping
func (r *OperatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	return r.db.WithContext(ctx).Create(operator).Error
}
