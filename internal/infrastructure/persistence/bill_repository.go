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
	"gorm.io/gorm/clause"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID loads a bill with its line items
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Bill not found")
		}
		return nil, fmt.Errorf("failed to find bill: %w", err)
	}
	return model.ToDomain(), nil
}

// FindLatestByTenancy returns the tenancy's bill with the most recent bill date
func (r *GormBillRepository) FindLatestByTenancy(ctx context.Context, tenancyID uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	err := r.db.WithContext(ctx).
		Where("tenancy_id = ?", tenancyID).
		Order("bill_date DESC").
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Tenancy has no bills")
		}
		return nil, fmt.Errorf("failed to find latest bill: %w", err)
	}
	return model.ToDomain(), nil
}

// ExistsForPeriod reports whether a bill exists for the tenancy and period label
func (r *GormBillRepository) ExistsForPeriod(ctx context.Context, tenancyID uuid.UUID, periodLabel string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("tenancy_id = ? AND period_label = ?", tenancyID, periodLabel).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check bill period: %w", err)
	}
	return count > 0, nil
}

// Create inserts the bill and its line items in one transaction.
// A unique violation on (tenancy_id, period_label) returns billing.ErrDuplicatePeriod.
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	items := model.Items
	model.Items = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return billing.ErrDuplicatePeriod.WithMessage(
				fmt.Sprintf("A bill for %s already exists", bill.PeriodLabel)).WithCause(err)
		}
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// Update writes the mutable columns of a bill when its version matches the stored one.
// On success the bill's version is incremented.
func (r *GormBillRepository) Update(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	columns := model.UpdateColumns()
	columns["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ? AND version = ?", bill.ID, bill.Version).
		Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to update bill: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Bill was modified by another request")
	}
	bill.IncrementVersion()
	return nil
}

// FindAll lists bills by bill date, newest first
func (r *GormBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, int64, error) {
	page := filter.Filter.Normalize()

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	var rows []models.BillModel
	err := r.filtered(ctx, filter).
		Preload("Items", orderedItems).
		Order("bill_date DESC").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := make([]billing.Bill, 0, len(rows))
	for i := range rows {
		bills = append(bills, *rows[i].ToDomain())
	}
	return bills, total, nil
}

// filtered builds a fresh bills query with the filter's conditions
func (r *GormBillRepository) filtered(ctx context.Context, filter billing.BillFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.BillModel{})
	if filter.TenancyID != nil {
		query = query.Where("tenancy_id = ?", *filter.TenancyID)
	}
	if filter.Paid != nil {
		if *filter.Paid {
			query = query.Where("paid_at IS NOT NULL")
		} else {
			query = query.Where("paid_at IS NULL")
		}
	}
	if filter.ArtifactStatus != nil {
		query = query.Where("artifact_status = ?", *filter.ArtifactStatus)
	}
	if filter.NotificationStatus != nil {
		query = query.Where("notification_status = ?", *filter.NotificationStatus)
	}
	return query
}

var _ billing.BillRepository = (*GormBillRepository)(nil)
