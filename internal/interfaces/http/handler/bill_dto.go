package handler

import (
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format of calendar dates
const dateLayout = "2006-01-02"

// GenerateBillRequest is the body of a bill generation call
// @Description Request body for generating the next bill of a tenancy
type GenerateBillRequest struct {
	TenancyID    string           `json:"tenancy_id" binding:"required,uuid" example:"6f1c2d8e-7a44-4d4b-9b7e-2c3f0d5e8a11"`
	PresentUnits *decimal.Decimal `json:"present_units" binding:"required,amount" swaggertype:"string" example:"150"`
	PeriodLabel  string           `json:"period_label" binding:"omitempty,max=20" example:"Aug 2025"`
	BillDate     string           `json:"bill_date" binding:"omitempty,datetime=2006-01-02" example:"2025-08-01"`
	OtherAmount  *decimal.Decimal `json:"other_amount" binding:"omitempty,amount" swaggertype:"string" example:"0"`
}

// MarkPaidRequest is the body of a payment record call
// @Description Request body for recording a payment
type MarkPaidRequest struct {
	PaidAt     string `json:"paid_at" binding:"omitempty,datetime=2006-01-02" example:"2025-08-07"`
	PaymentRef string `json:"payment_ref" binding:"max=100" example:"UTR998877"`
}

// ListBillsQuery holds the bill listing filters
type ListBillsQuery struct {
	TenancyID          string `form:"tenancy_id" binding:"omitempty,uuid"`
	Paid               *bool  `form:"paid"`
	ArtifactStatus     string `form:"artifact_status" binding:"omitempty,oneof=PENDING GENERATED FAILED"`
	NotificationStatus string `form:"notification_status" binding:"omitempty,oneof=PENDING QUEUED FAILED"`
	dto.ListRequest
}

// GenerateBillResponse is a created bill plus the follow-up steps that failed
// @Description Generated bill with non-fatal warnings
type GenerateBillResponse struct {
	Bill     *appbilling.BillResponse `json:"bill"`
	Warnings []dto.ErrorInfo          `json:"warnings"`
}
