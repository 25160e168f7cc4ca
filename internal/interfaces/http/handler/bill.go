package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appbilling "github.com/rentdesk/backend/internal/application/billing"
	"github.com/rentdesk/backend/internal/domain/shared"
	"github.com/rentdesk/backend/internal/interfaces/http/dto"
)

// BillService is the application surface used by BillHandler
type BillService interface {
	Generate(ctx context.Context, req appbilling.GenerateBillRequest) (*appbilling.GenerateBillResult, error)
	RegenerateArtifact(ctx context.Context, billID uuid.UUID) (*appbilling.BillResponse, error)
	ResendNotification(ctx context.Context, billID uuid.UUID) (*appbilling.BillResponse, error)
	MarkPaid(ctx context.Context, billID uuid.UUID, req appbilling.MarkPaidRequest) (*appbilling.BillResponse, error)
	GetBill(ctx context.Context, billID uuid.UUID) (*appbilling.BillResponse, error)
	ListBills(ctx context.Context, filter appbilling.BillListFilter) (*shared.Paginated[appbilling.BillResponse], error)
}

// BillHandler handles bill-related API endpoints
type BillHandler struct {
	BaseHandler
	billService BillService
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// Generate godoc
// @ID           generateBill
// @Summary      Generate the next bill of a tenancy
// @Description  Creates the bill and its line items atomically, then renders the payment QR and queues the tenant notification. Failures of those two steps are returned as warnings.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        request body GenerateBillRequest true "Generation request"
// @Success      201 {object} dto.Response{data=GenerateBillResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /bills [post]
func (h *BillHandler) Generate(c *gin.Context) {
	var req GenerateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	appReq := appbilling.GenerateBillRequest{
		TenancyID:    uuid.MustParse(req.TenancyID),
		PresentUnits: *req.PresentUnits,
		PeriodLabel:  req.PeriodLabel,
		OtherAmount:  req.OtherAmount,
	}
	if req.BillDate != "" {
		billDate, _ := time.Parse(dateLayout, req.BillDate)
		appReq.BillDate = &billDate
	}

	result, err := h.billService.Generate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	warnings := make([]dto.ErrorInfo, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, dto.ErrorInfo{
			Code:    dto.NormalizeErrorCode(w.Code),
			Message: w.Error(),
		})
	}
	h.Created(c, GenerateBillResponse{Bill: result.Bill, Warnings: warnings})
}

// GetByID godoc
// @ID           getBill
// @Summary      Get a bill
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.BillResponse}
// @Failure      404 {object} dto.Response
// @Router       /bills/{id} [get]
func (h *BillHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// List godoc
// @ID           listBills
// @Summary      List bills newest first
// @Tags         bills
// @Produce      json
// @Param        tenancy_id query string false "Tenancy ID" format(uuid)
// @Param        paid query bool false "Paid state"
// @Param        artifact_status query string false "Artifact status" Enums(PENDING, GENERATED, FAILED)
// @Param        notification_status query string false "Notification status" Enums(PENDING, QUEUED, FAILED)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appbilling.BillResponse}
// @Router       /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	var query ListBillsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	filter := appbilling.BillListFilter{
		Paid:               query.Paid,
		ArtifactStatus:     query.ArtifactStatus,
		NotificationStatus: query.NotificationStatus,
		Page:               query.Page,
		PageSize:           query.PageSize,
	}
	if query.TenancyID != "" {
		tenancyID := uuid.MustParse(query.TenancyID)
		filter.TenancyID = &tenancyID
	}

	page, err := h.billService.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// RegenerateArtifact godoc
// @ID           regenerateBillArtifact
// @Summary      Generate the payment QR of a bill that has none
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.BillResponse}
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /bills/{id}/artifact [post]
func (h *BillHandler) RegenerateArtifact(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.billService.RegenerateArtifact(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// ResendNotification godoc
// @ID           resendBillNotification
// @Summary      Queue the tenant notification of a bill again
// @Tags         bills
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.BillResponse}
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /bills/{id}/notification [post]
func (h *BillHandler) ResendNotification(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.billService.ResendNotification(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// MarkPaid godoc
// @ID           markBillPaid
// @Summary      Record a payment against a bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        id path string true "Bill ID" format(uuid)
// @Param        request body MarkPaidRequest false "Payment details"
// @Success      200 {object} dto.Response{data=appbilling.BillResponse}
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /bills/{id}/payment [post]
func (h *BillHandler) MarkPaid(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req MarkPaidRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}

	appReq := appbilling.MarkPaidRequest{PaymentRef: req.PaymentRef}
	if req.PaidAt != "" {
		paidAt, _ := time.Parse(dateLayout, req.PaidAt)
		appReq.PaidAt = &paidAt
	}

	bill, err := h.billService.MarkPaid(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}
