package handler

import (
	"strconv"

	"multicurrency-ledger/internal/adapter/http/dto"
	"multicurrency-ledger/internal/adapter/http/middleware"
	"multicurrency-ledger/internal/core/ports"
	"multicurrency-ledger/pkg/apperror"
	"multicurrency-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// CurrencyHandler handles registry and conversion endpoints.
type CurrencyHandler struct {
	currencySvc ports.CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencySvc ports.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currencySvc: currencySvc}
}

// Register handles POST /api/v1/currencies. Only the configured
// administrator account may register; the service enforces it.
func (h *CurrencyHandler) Register(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RegisterCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	currency, err := h.currencySvc.Register(c.Request.Context(), ports.RegisterCurrencyRequest{
		CallerID:      callerID,
		Code:          dto.CanonicalCode(req.Code),
		RateMicroUSD:  req.RateMicroUSD,
		DecimalPlaces: req.DecimalPlaces,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToCurrencyResponse(currency))
}

// Get handles GET /api/v1/currencies/:code.
func (h *CurrencyHandler) Get(c *gin.Context) {
	code := dto.CanonicalCode(c.Param("code"))

	currency, err := h.currencySvc.Get(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	if currency == nil {
		response.Error(c, apperror.ErrCurrencyNotSupported())
		return
	}

	response.OK(c, dto.ToCurrencyResponse(currency))
}

// List handles GET /api/v1/currencies.
func (h *CurrencyHandler) List(c *gin.Context) {
	currencies, err := h.currencySvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.CurrencyResponse, 0, len(currencies))
	for i := range currencies {
		items = append(items, dto.ToCurrencyResponse(&currencies[i]))
	}

	response.OK(c, dto.CurrencyListResponse{Items: items, Total: len(items)})
}

// Convert handles GET /api/v1/convert?amount=&from=&to=.
func (h *CurrencyHandler) Convert(c *gin.Context) {
	amountStr := c.Query("amount")
	from := dto.CanonicalCode(c.Query("from"))
	to := dto.CanonicalCode(c.Query("to"))

	if amountStr == "" || from == "" || to == "" {
		response.Error(c, apperror.Validation("amount, from and to are required"))
		return
	}

	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("amount must be an integer"))
		return
	}

	converted, err := h.currencySvc.Convert(c.Request.Context(), amount, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ConvertResponse{
		From:      from,
		To:        to,
		Amount:    amount,
		Converted: converted,
	})
}
