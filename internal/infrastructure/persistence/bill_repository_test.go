package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

func seedTenancy(t *testing.T, db *gorm.DB) *models.TenancyModel {
	now := time.Now()
	landlord := models.PartyModel{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, Name: "Ravi Kumar", Email: "ravi-" + uuid.NewString() + "@example.com"}
	tenant := models.PartyModel{BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, Name: "Asha", Email: "asha-" + uuid.NewString() + "@example.com"}
	require.NoError(t, db.Create(&landlord).Error)
	require.NoError(t, db.Create(&tenant).Error)

	property := models.PropertyModel{
		BaseModel:       models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		LandlordID:      landlord.ID,
		Name:            "Lake View",
		WaterCharge:     decimal.NewFromInt(100),
		ElectricityRate: decimal.NewFromInt(5),
		MonthlyRent:     decimal.NewFromInt(5000),
		PayeeHandle:     "ravi@okbank",
	}
	require.NoError(t, db.Omit("Landlord").Create(&property).Error)

	start := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	tenancy := models.TenancyModel{
		BaseModel:    models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PropertyID:   property.ID,
		TenantID:     tenant.ID,
		InitialUnits: decimal.NewFromInt(1000),
		StartDate:    &start,
		Active:       true,
	}
	require.NoError(t, db.Omit("Property", "Tenant").Create(&tenancy).Error)
	return &tenancy
}

func newRepoTestBill(t *testing.T, tenancyID uuid.UUID, year int, month time.Month, prev, present int64) *billing.Bill {
	calc := billing.NewCalculator()
	breakdown := calc.Calculate(billing.ChargeInput{
		Rates: billing.RateSnapshot{
			WaterCharge:     decimal.NewFromInt(100),
			ElectricityRate: decimal.NewFromInt(5),
			MonthlyRent:     decimal.NewFromInt(5000),
		},
		PreviousUnits: decimal.NewFromInt(prev),
		PresentUnits:  decimal.NewFromInt(present),
	})
	period := billing.PeriodOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	bill, err := billing.NewBill(tenancyID, period, decimal.NewFromInt(prev), decimal.NewFromInt(present), breakdown)
	require.NoError(t, err)
	return bill
}

func TestGormBillRepository_CreateAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	tenancy := seedTenancy(t, db)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	bill := newRepoTestBill(t, tenancy.ID, 2025, time.August, 1000, 1100)
	require.NoError(t, repo.Create(ctx, bill))

	found, err := repo.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aug 2025", found.PeriodLabel)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), found.BillDate)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(5600)))
	assert.True(t, found.ElectricityAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, billing.ArtifactStatusPending, found.ArtifactStatus)
	assert.Equal(t, billing.NotificationStatusPending, found.NotificationStatus)
	assert.Equal(t, 1, found.Version)

	require.Len(t, found.Items, 3)
	assert.Equal(t, billing.LineItemRent, found.Items[0].Label)
	assert.Equal(t, billing.LineItemWater, found.Items[1].Label)
	assert.Equal(t, billing.LineItemElectricity, found.Items[2].Label)
}

func TestGormBillRepository_FindByID_NotFound(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormBillRepository_DuplicatePeriod(t *testing.T) {
	db := setupBillingTestDB(t)
	tenancy := seedTenancy(t, db)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRepoTestBill(t, tenancy.ID, 2025, time.August, 1000, 1100)))

	err := repo.Create(ctx, newRepoTestBill(t, tenancy.ID, 2025, time.August, 1100, 1200))
	assert.True(t, errors.Is(err, billing.ErrDuplicatePeriod))

	var bills, items int64
	require.NoError(t, db.Model(&models.BillModel{}).Count(&bills).Error)
	require.NoError(t, db.Model(&models.BillLineItemModel{}).Count(&items).Error)
	assert.Equal(t, int64(1), bills)
	assert.Equal(t, int64(3), items)
}

func TestGormBillRepository_FindLatestByTenancy(t *testing.T) {
	db := setupBillingTestDB(t)
	tenancy := seedTenancy(t, db)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	_, err := repo.FindLatestByTenancy(ctx, tenancy.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	require.NoError(t, repo.Create(ctx, newRepoTestBill(t, tenancy.ID, 2025, time.September, 1100, 1250)))
	require.NoError(t, repo.Create(ctx, newRepoTestBill(t, tenancy.ID, 2025, time.August, 1000, 1100)))

	latest, err := repo.FindLatestByTenancy(ctx, tenancy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sep 2025", latest.PeriodLabel)
	assert.True(t, latest.PresentUnits.Equal(decimal.NewFromInt(1250)))
}

func TestGormBillRepository_ExistsForPeriod(t *testing.T) {
	db := setupBillingTestDB(t)
	tenancy := seedTenancy(t, db)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRepoTestBill(t, tenancy.ID, 2025, time.August, 1000, 1100)))

	exists, err := repo.ExistsForPeriod(ctx, tenancy.ID, "Aug 2025")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForPeriod(ctx, tenancy.ID, "Sep 2025")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormBillRepository_Update(t *testing.T) {
	db := setupBillingTestDB(t)
	tenancy := seedTenancy(t, db)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	bill := newRepoTestBill(t, tenancy.ID, 2025, time.August, 1000, 1100)
	require.NoError(t, repo.Create(ctx, bill))

	stale, err := repo.FindByID(ctx, bill.ID)
	require.NoError(t, err)

	require.NoError(t, bill.AttachArtifact("qrs/a.png", "upi://pay?pa=x"))
	require.NoError(t, repo.Update(ctx, bill))
	assert.Equal(t, 2, bill.Version)

	found, err := repo.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.ArtifactStatusGenerated, found.ArtifactStatus)
	require.NotNil(t, found.ArtifactPath)
	assert.Equal(t, "qrs/a.png", *found.ArtifactPath)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(5600)))

	stale.RecordNotificationFailure("queue down")
	err = repo.Update(ctx, stale)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
}

func TestGormBillRepository_FindAll(t *testing.T) {
	db := setupBillingTestDB(t)
	first := seedTenancy(t, db)
	second := seedTenancy(t, db)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	aug := newRepoTestBill(t, first.ID, 2025, time.August, 1000, 1100)
	sep := newRepoTestBill(t, first.ID, 2025, time.September, 1100, 1200)
	other := newRepoTestBill(t, second.ID, 2025, time.October, 1000, 1010)
	for _, b := range []*billing.Bill{aug, sep, other} {
		require.NoError(t, repo.Create(ctx, b))
	}
	require.NoError(t, sep.MarkPaid(time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC), "UTR123"))
	require.NoError(t, repo.Update(ctx, sep))
	other.RecordArtifactFailure("bucket unavailable")
	require.NoError(t, repo.Update(ctx, other))

	t.Run("newest first", func(t *testing.T) {
		bills, total, err := repo.FindAll(ctx, billing.BillFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, bills, 3)
		assert.Equal(t, "Oct 2025", bills[0].PeriodLabel)
		assert.Equal(t, "Aug 2025", bills[2].PeriodLabel)
		assert.Len(t, bills[0].Items, 3)
	})

	t.Run("by tenancy", func(t *testing.T) {
		bills, total, err := repo.FindAll(ctx, billing.BillFilter{TenancyID: &first.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, bills, 2)
	})

	t.Run("by paid", func(t *testing.T) {
		paid := true
		bills, _, err := repo.FindAll(ctx, billing.BillFilter{Paid: &paid})
		require.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, sep.ID, bills[0].ID)

		unpaid := false
		_, total, err := repo.FindAll(ctx, billing.BillFilter{Paid: &unpaid})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("by artifact status", func(t *testing.T) {
		failed := billing.ArtifactStatusFailed
		bills, _, err := repo.FindAll(ctx, billing.BillFilter{ArtifactStatus: &failed})
		require.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, other.ID, bills[0].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		bills, total, err := repo.FindAll(ctx, billing.BillFilter{Filter: shared.Filter{Page: 2, PageSize: 2}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, bills, 1)
		assert.Equal(t, "Aug 2025", bills[0].PeriodLabel)
	})
}

func TestGormBillRepository_DuplicatePeriod_SQLMock(t *testing.T) {
	cases := map[string]error{
		"pgx":    &pgconn.PgError{Code: "23505", ConstraintName: "uq_bills_tenancy_period"},
		"lib/pq": &pq.Error{Code: "23505", Constraint: "uq_bills_tenancy_period"},
	}
	for name, uniqueViolation := range cases {
		t.Run(name, func(t *testing.T) {
			db, mock, mockDB := newMockDatabase(t)
			defer mockDB.Close()
			repo := NewGormBillRepository(db.DB)

			bill := newRepoTestBill(t, uuid.New(), 2025, time.August, 1000, 1100)
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bills"`)).
				WillReturnError(uniqueViolation)
			mock.ExpectRollback()

			err := repo.Create(context.Background(), bill)
			assert.True(t, errors.Is(err, billing.ErrDuplicatePeriod))
			assert.Contains(t, err.Error(), "Aug 2025")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormBillRepository_CreateFailure_SQLMock(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormBillRepository(db.DB)

	bill := newRepoTestBill(t, uuid.New(), 2025, time.August, 1000, 1100)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "bills"`)).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "chk_bills_readings"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), bill)
	require.Error(t, err)
	assert.False(t, errors.Is(err, billing.ErrDuplicatePeriod))
	assert.Contains(t, err.Error(), "failed to create bill")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBillRepository_UpdateConflict_SQLMock(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormBillRepository(db.DB)

	bill := newRepoTestBill(t, uuid.New(), 2025, time.August, 1000, 1100)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "bills" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), bill)
	assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
	assert.Equal(t, 1, bill.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBillRepository_QueryError_SQLMock(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormBillRepository(db.DB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "bills"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ExistsForPeriod(context.Background(), uuid.New(), "Aug 2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check bill period")
	assert.False(t, errors.Is(err, shared.ErrNotFound))
}
