package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentdesk/backend/internal/domain/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillServiceConfig holds presentation and calendar settings of the bill service
type BillServiceConfig struct {
	// PublicURL prefixes stored artifact paths in responses and notifications
	PublicURL string
	// Location is the timezone used to resolve periods and default payment dates
	Location *time.Location
}

// BillService generates tenant bills and drives their follow-up steps.
//
// Generation writes the bill and its line items in one transaction. The payment
// artifact and the tenant notification run after commit; their failures are
// recorded on the bill and reported as warnings, never as a failed generation.
type BillService struct {
	scope       TransactionScope
	billRepo    billing.BillRepository
	tenancyRepo billing.TenancyRepository
	calculator  billing.Calculator
	artifacts   ArtifactGenerator
	dispatcher  NotificationDispatcher
	metrics     *telemetry.BillingMetrics
	logger      *zap.Logger
	publicURL   string
	location    *time.Location
	now         func() time.Time
}

// NewBillService creates a new BillService
func NewBillService(
	scope TransactionScope,
	billRepo billing.BillRepository,
	tenancyRepo billing.TenancyRepository,
	artifacts ArtifactGenerator,
	dispatcher NotificationDispatcher,
	cfg BillServiceConfig,
	logger *zap.Logger,
) *BillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	return &BillService{
		scope:       scope,
		billRepo:    billRepo,
		tenancyRepo: tenancyRepo,
		calculator:  billing.NewCalculator(),
		artifacts:   artifacts,
		dispatcher:  dispatcher,
		logger:      logger,
		publicURL:   cfg.PublicURL,
		location:    location,
		now:         time.Now,
	}
}

// SetMetrics sets the billing metrics recorder (optional)
func (s *BillService) SetMetrics(metrics *telemetry.BillingMetrics) {
	s.metrics = metrics
}

// SetClock replaces the time source (tests)
func (s *BillService) SetClock(now func() time.Time) {
	s.now = now
}

// Generate creates the next bill for a tenancy.
//
// It fails with ErrInvalidReading when the present reading is below the
// previous one, ErrDuplicatePeriod when the period is already billed and
// ErrPersistenceFailure when the write fails. In each of those cases nothing is
// written. Once the bill is committed the call succeeds; artifact and
// notification failures are returned in the result's warnings.
func (s *BillService) Generate(ctx context.Context, req GenerateBillRequest) (*GenerateBillResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenancyID, req.TenancyID.String())

	if req.TenancyID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Tenancy ID is required")
	}
	if req.PresentUnits.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Present reading cannot be negative")
	}
	if !billing.HasStoredPrecision(req.PresentUnits) {
		return nil, shared.ErrInvalidInput.WithMessage("Present reading cannot have more than two decimal places")
	}
	other := decimal.Zero
	if req.OtherAmount != nil {
		if req.OtherAmount.IsNegative() {
			return nil, shared.ErrInvalidInput.WithMessage("Other amount cannot be negative")
		}
		if !billing.HasStoredPrecision(*req.OtherAmount) {
			return nil, shared.ErrInvalidInput.WithMessage("Other amount cannot have more than two decimal places")
		}
		other = *req.OtherAmount
	}

	var (
		bill    *billing.Bill
		tenancy *billing.Tenancy
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		t, err := repos.TenancyRepo().FindByID(ctx, req.TenancyID)
		if err != nil {
			return asPersistenceFailure(err)
		}

		previous := t.InitialUnits
		var priorBillDate *time.Time
		prior, err := repos.BillRepo().FindLatestByTenancy(ctx, t.ID)
		switch {
		case err == nil:
			previous = prior.PresentUnits
			priorBillDate = &prior.BillDate
		case errors.Is(err, shared.ErrNotFound):
		default:
			return asPersistenceFailure(err)
		}

		if req.PresentUnits.LessThan(previous) {
			return billing.ErrInvalidReading.WithMessage(fmt.Sprintf(
				"Present reading %s is lower than the previous reading %s", req.PresentUnits, previous))
		}

		period, err := billing.ResolvePeriod(
			billing.PeriodOverride{Label: req.PeriodLabel, BillDate: req.BillDate},
			priorBillDate,
			t.StartDate,
			s.now().In(s.location),
		)
		if err != nil {
			return err
		}

		exists, err := repos.BillRepo().ExistsForPeriod(ctx, t.ID, period.Label)
		if err != nil {
			return asPersistenceFailure(err)
		}
		if exists {
			return billing.ErrDuplicatePeriod.WithMessage(fmt.Sprintf("A bill for %s already exists", period.Label))
		}

		breakdown := s.calculator.Calculate(billing.ChargeInput{
			Rates:         t.Property.Rates(),
			PreviousUnits: previous,
			PresentUnits:  req.PresentUnits,
			OtherAmount:   other,
		})

		b, err := billing.NewBill(t.ID, period, previous, req.PresentUnits, breakdown)
		if err != nil {
			return err
		}
		if err := repos.BillRepo().Create(ctx, b); err != nil {
			return asPersistenceFailure(err)
		}

		bill = b
		tenancy = t
		return nil
	})
	if err != nil {
		err = asPersistenceFailure(err)
		telemetry.RecordError(span, err)
		s.logger.Info("Bill generation rejected",
			zap.String("tenancy_id", req.TenancyID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, bill.ID.String(),
		telemetry.SpanAttrPeriod, bill.PeriodLabel,
		telemetry.SpanAttrAmount, bill.TotalAmount.String(),
	)
	s.metrics.RecordBillGenerated(ctx, bill.TotalAmount)
	s.logger.Info("Bill generated",
		zap.String("bill_id", bill.ID.String()),
		zap.String("tenancy_id", bill.TenancyID.String()),
		zap.String("period_label", bill.PeriodLabel),
		zap.String("total_amount", bill.TotalAmount.StringFixed(billing.AmountPlaces)),
	)

	result := &GenerateBillResult{}
	if err := s.attachArtifact(ctx, bill, tenancy); err != nil {
		result.Warnings = append(result.Warnings, err)
	}
	if err := s.notify(ctx, bill, tenancy); err != nil {
		result.Warnings = append(result.Warnings, err)
	}

	resp := ToBillResponse(bill, s.publicURL)
	result.Bill = &resp
	return result, nil
}

// RegenerateArtifact produces the payment artifact of a bill that has none.
// A bill that already has an artifact is returned unchanged.
func (s *BillService) RegenerateArtifact(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "regenerate_artifact")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String())

	bill, tenancy, err := s.loadBillWithTenancy(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.attachArtifact(ctx, bill, tenancy); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToBillResponse(bill, s.publicURL)
	return &resp, nil
}

// ResendNotification enqueues the tenant notification of a bill again
func (s *BillService) ResendNotification(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "resend_notification")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String())

	bill, tenancy, err := s.loadBillWithTenancy(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.notify(ctx, bill, tenancy); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToBillResponse(bill, s.publicURL)
	return &resp, nil
}

// MarkPaid records a payment against a bill
func (s *BillService) MarkPaid(ctx context.Context, billID uuid.UUID, req MarkPaidRequest) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "mark_paid")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBillID, billID.String())

	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	paidAt := s.today()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	if err := bill.MarkPaid(paidAt, req.PaymentRef); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.billRepo.Update(ctx, bill); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordBillPaid(ctx)
	s.logger.Info("Bill marked paid",
		zap.String("bill_id", bill.ID.String()),
		zap.Time("paid_at", paidAt),
	)

	resp := ToBillResponse(bill, s.publicURL)
	return &resp, nil
}

// GetBill returns a bill with its line items
func (s *BillService) GetBill(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill, s.publicURL)
	return &resp, nil
}

// ListBills returns bills newest first
func (s *BillService) ListBills(ctx context.Context, filter BillListFilter) (*shared.Paginated[BillResponse], error) {
	domainFilter := billing.BillFilter{
		Filter:    shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
		TenancyID: filter.TenancyID,
		Paid:      filter.Paid,
	}
	if filter.ArtifactStatus != "" {
		status := billing.ArtifactStatus(filter.ArtifactStatus)
		if !status.IsValid() {
			return nil, shared.ErrInvalidInput.WithMessage("Unknown artifact status: " + filter.ArtifactStatus)
		}
		domainFilter.ArtifactStatus = &status
	}
	if filter.NotificationStatus != "" {
		status := billing.NotificationStatus(filter.NotificationStatus)
		if !status.IsValid() {
			return nil, shared.ErrInvalidInput.WithMessage("Unknown notification status: " + filter.NotificationStatus)
		}
		domainFilter.NotificationStatus = &status
	}

	bills, total, err := s.billRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	items := make([]BillResponse, 0, len(bills))
	for i := range bills {
		items = append(items, ToBillResponse(&bills[i], s.publicURL))
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// attachArtifact generates and records the payment artifact when the bill has none.
// The outcome is persisted on the bill either way.
func (s *BillService) attachArtifact(ctx context.Context, bill *billing.Bill, tenancy *billing.Tenancy) *shared.DomainError {
	if bill.HasArtifact() {
		return nil
	}

	artifact, err := s.artifacts.Generate(ctx, ArtifactRequest{
		PayeeHandle: tenancy.Property.PayeeHandle,
		PayeeName:   tenancy.Property.Landlord.Name,
		Amount:      bill.TotalAmount,
		Note:        tenancy.PaymentNote(bill.PeriodLabel),
	})
	if err == nil {
		err = bill.AttachArtifact(artifact.Path, artifact.Intent)
	}
	if err != nil {
		failure := asDomainError(err, billing.ErrArtifactWrite)
		bill.RecordArtifactFailure(failure.Error())
		s.metrics.RecordArtifactFailure(ctx)
		s.logger.Warn("Payment artifact generation failed",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err),
		)
		s.saveFollowUp(ctx, bill)
		return failure
	}

	if err := s.billRepo.Update(ctx, bill); err != nil {
		s.logger.Error("Failed to record payment artifact",
			zap.String("bill_id", bill.ID.String()),
			zap.String("path", artifact.Path),
			zap.Error(err),
		)
		if discardErr := s.artifacts.Discard(ctx, artifact.Path); discardErr != nil {
			s.logger.Warn("Unrecorded payment artifact left in storage",
				zap.String("path", artifact.Path),
				zap.Error(discardErr),
			)
		}
		failure := billing.ErrArtifactWrite.WithMessage("Payment artifact stored but not recorded").WithCause(err)
		bill.DetachArtifact(failure.Error())
		s.metrics.RecordArtifactFailure(ctx)
		return failure
	}

	s.logger.Info("Payment artifact attached",
		zap.String("bill_id", bill.ID.String()),
		zap.String("path", artifact.Path),
	)
	return nil
}

// notify hands the tenant notification to the dispatcher and records the outcome
func (s *BillService) notify(ctx context.Context, bill *billing.Bill, tenancy *billing.Tenancy) *shared.DomainError {
	notification := BillNotification{
		Template:    TemplateTenantBill,
		Recipient:   tenancy.Tenant.Email,
		BillID:      bill.ID,
		PeriodLabel: bill.PeriodLabel,
		Data: BillTemplateData{
			TenantName:  tenancy.Tenant.Name,
			TotalAmount: bill.TotalAmount,
			ArtifactURL: artifactURL(bill, s.publicURL),
		},
		EnqueuedAt: s.now(),
	}

	if err := s.dispatcher.Dispatch(ctx, notification); err != nil {
		failure := asDomainError(err, billing.ErrNotificationEnqueue)
		bill.RecordNotificationFailure(failure.Error())
		s.metrics.RecordNotificationFailure(ctx, s.dispatcher.Driver())
		s.logger.Warn("Tenant notification enqueue failed",
			zap.String("bill_id", bill.ID.String()),
			zap.String("driver", s.dispatcher.Driver()),
			zap.Error(err),
		)
		s.saveFollowUp(ctx, bill)
		return failure
	}

	bill.RecordNotificationQueued(notification.EnqueuedAt)
	s.saveFollowUp(ctx, bill)
	return nil
}

// saveFollowUp persists step status changes. A failure here leaves the previous
// status in place, which keeps the step retryable.
func (s *BillService) saveFollowUp(ctx context.Context, bill *billing.Bill) {
	if err := s.billRepo.Update(ctx, bill); err != nil {
		s.logger.Error("Failed to record bill step status",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *BillService) loadBillWithTenancy(ctx context.Context, billID uuid.UUID) (*billing.Bill, *billing.Tenancy, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	tenancy, err := s.tenancyRepo.FindByID(ctx, bill.TenancyID)
	if err != nil {
		return nil, nil, err
	}
	return bill, tenancy, nil
}

func (s *BillService) today() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

// asPersistenceFailure keeps domain errors and wraps anything else as ErrPersistenceFailure
func asPersistenceFailure(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return billing.ErrPersistenceFailure.WithCause(err)
}

// asDomainError returns err as a domain error carrying fallback's code when it has another one
func asDomainError(err error, fallback *shared.DomainError) *shared.DomainError {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == fallback.Code {
		return domainErr
	}
	return fallback.WithCause(err)
}
