package handler

import (
	"multicurrency-ledger/internal/adapter/http/dto"
	"multicurrency-ledger/internal/adapter/http/middleware"
	"multicurrency-ledger/internal/core/ports"
	"multicurrency-ledger/pkg/apperror"
	"multicurrency-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// BalanceHandler handles merchant balance endpoints.
type BalanceHandler struct {
	balanceSvc ports.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceSvc ports.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceSvc: balanceSvc}
}

// Get handles GET /api/v1/balances/:currency. Callers can only read their
// own balance; an account that never received a payment reads zero.
func (h *BalanceHandler) Get(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	currency := dto.CanonicalCode(c.Param("currency"))
	amount, err := h.balanceSvc.Get(c.Request.Context(), callerID, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{Currency: currency, Amount: amount})
}

// Withdraw handles POST /api/v1/withdrawals.
func (h *BalanceHandler) Withdraw(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	currency := dto.CanonicalCode(req.Currency)
	remaining, err := h.balanceSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		CallerID: callerID,
		Currency: currency,
		Amount:   req.Amount,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WithdrawResponse{
		Currency:  currency,
		Withdrawn: req.Amount,
		Remaining: remaining,
	})
}
