package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenancyRepository implements billing.TenancyRepository using GORM
type GormTenancyRepository struct {
	db *gorm.DB
}

// NewGormTenancyRepository creates a new GormTenancyRepository
func NewGormTenancyRepository(db *gorm.DB) *GormTenancyRepository {
	return &GormTenancyRepository{db: db}
}

// FindByID loads a tenancy with its property, landlord and tenant
func (r *GormTenancyRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Tenancy, error) {
	var model models.TenancyModel
	err := r.db.WithContext(ctx).
		Preload("Property.Landlord").
		Preload("Tenant").
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Tenancy not found")
		}
		return nil, fmt.Errorf("failed to find tenancy: %w", err)
	}
	return model.ToDomain(), nil
}

var _ billing.TenancyRepository = (*GormTenancyRepository)(nil)
