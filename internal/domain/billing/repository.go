package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/shared"
)

// BillFilter narrows bill listings
type BillFilter struct {
	shared.Filter
	TenancyID          *uuid.UUID
	Paid               *bool
	ArtifactStatus     *ArtifactStatus
	NotificationStatus *NotificationStatus
}

// BillRepository defines the persistence contract for bills and their line items
type BillRepository interface {
	// FindByID loads a bill with its line items
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)

	// FindLatestByTenancy returns the tenancy's bill with the most recent bill date,
	// or shared.ErrNotFound when the tenancy has no bills
	FindLatestByTenancy(ctx context.Context, tenancyID uuid.UUID) (*Bill, error)

	// ExistsForPeriod reports whether the tenancy already has a bill for the period label
	ExistsForPeriod(ctx context.Context, tenancyID uuid.UUID, periodLabel string) (bool, error)

	// Create inserts the bill and all of its line items.
	// A uniqueness violation on (tenancy, period) returns ErrDuplicatePeriod.
	Create(ctx context.Context, bill *Bill) error

	// Update writes the mutable fields of a bill under optimistic locking
	Update(ctx context.Context, bill *Bill) error

	// FindAll lists bills newest first and returns the total match count
	FindAll(ctx context.Context, filter BillFilter) ([]Bill, int64, error)
}

// TenancyRepository reads tenancies with their property, landlord and tenant
type TenancyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenancy, error)
}
