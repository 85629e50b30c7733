package handler

import (
	"strconv"

	"multicurrency-ledger/internal/adapter/http/dto"
	"multicurrency-ledger/internal/adapter/http/middleware"
	"multicurrency-ledger/internal/core/domain"
	"multicurrency-ledger/internal/core/ports"
	"multicurrency-ledger/pkg/apperror"
	"multicurrency-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment ledger endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Create handles POST /api/v1/payments. The authenticated caller becomes
// the payment's customer.
func (h *PaymentHandler) Create(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	merchantID, err := uuid.Parse(req.MerchantID)
	if err != nil {
		response.Error(c, apperror.Validation("merchant_id must be a UUID"))
		return
	}

	payment, err := h.paymentSvc.Create(c.Request.Context(), ports.CreatePaymentRequest{
		CallerID:   callerID,
		MerchantID: merchantID,
		Amount:     req.Amount,
		Currency:   dto.CanonicalCode(req.Currency),
		ClientIP:   c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToPaymentResponse(payment))
}

// Settle handles POST /api/v1/payments/:id/settle.
func (h *PaymentHandler) Settle(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	payment, err := h.paymentSvc.Settle(c.Request.Context(), ports.SettlePaymentRequest{
		CallerID:  callerID,
		PaymentID: c.Param("id"),
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToPaymentResponse(payment))
}

// Get handles GET /api/v1/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.paymentSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if payment == nil {
		response.Error(c, apperror.ErrPaymentNotFound())
		return
	}

	response.OK(c, dto.ToPaymentResponse(payment))
}

// List handles GET /api/v1/payments. Filters: merchant_id, customer_id,
// status, currency; pagination: page, page_size.
func (h *PaymentHandler) List(c *gin.Context) {
	params := ports.PaymentListParams{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	if v := c.Query("merchant_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("merchant_id must be a UUID"))
			return
		}
		params.MerchantID = &id
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.Error(c, apperror.Validation("customer_id must be a UUID"))
			return
		}
		params.CustomerID = &id
	}
	if v := c.Query("status"); v != "" {
		status := domain.PaymentStatus(v)
		if status != domain.PaymentStatusPending && status != domain.PaymentStatusCompleted {
			response.Error(c, apperror.Validation("status must be PENDING or COMPLETED"))
			return
		}
		params.Status = &status
	}
	if v := c.Query("currency"); v != "" {
		code := dto.CanonicalCode(v)
		params.Currency = &code
	}

	payments, total, err := h.paymentSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, dto.ToPaymentResponse(&payments[i]))
	}

	totalPages := int(total) / params.PageSize
	if int(total)%params.PageSize != 0 {
		totalPages++
	}

	response.OK(c, dto.PaymentListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
