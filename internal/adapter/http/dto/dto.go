package dto

import (
	"time"

	"multicurrency-ledger/internal/core/domain"
)

// RegisterCurrencyRequest is the request body for currency registration.
type RegisterCurrencyRequest struct {
	Code          string `json:"code" binding:"required,currency_code"`
	RateMicroUSD  int64  `json:"rate_micro_usd" binding:"required,gt=0"`
	DecimalPlaces int32  `json:"decimal_places" binding:"gte=0,lte=18"`
}

// CurrencyResponse is the response body for registry entries.
type CurrencyResponse struct {
	Code          string `json:"code"`
	Kind          string `json:"kind"`
	Enabled       bool   `json:"enabled"`
	RateMicroUSD  int64  `json:"rate_micro_usd"`
	DecimalPlaces int32  `json:"decimal_places"`
	UpdatedAt     string `json:"updated_at"`
}

// CurrencyListResponse wraps the full registry listing.
type CurrencyListResponse struct {
	Items []CurrencyResponse `json:"items"`
	Total int                `json:"total"`
}

// ConvertResponse is the response for amount conversion.
type ConvertResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    int64  `json:"amount"`
	Converted int64  `json:"converted"`
}

// CreatePaymentRequest is the request body for payment creation.
type CreatePaymentRequest struct {
	MerchantID string `json:"merchant_id" binding:"required,uuid"`
	Amount     int64  `json:"amount" binding:"required,gt=0"`
	Currency   string `json:"currency" binding:"required,currency_code"`
}

// PaymentResponse is the response body for payment records.
type PaymentResponse struct {
	ID            string  `json:"id"`
	MerchantID    string  `json:"merchant_id"`
	CustomerID    string  `json:"customer_id"`
	Amount        int64   `json:"amount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	SettlementRef *int64  `json:"settlement_ref,omitempty"`
	CreatedAt     string  `json:"created_at"`
	SettledAt     *string `json:"settled_at,omitempty"`
}

// PaymentListResponse wraps a paginated payment listing.
type PaymentListResponse struct {
	Items      []PaymentResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// WithdrawRequest is the request body for a withdrawal.
type WithdrawRequest struct {
	Currency string `json:"currency" binding:"required,currency_code"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

// WithdrawResponse is the response for a completed withdrawal.
type WithdrawResponse struct {
	Currency  string `json:"currency"`
	Withdrawn int64  `json:"withdrawn"`
	Remaining int64  `json:"remaining"`
}

// ToCurrencyResponse maps a domain currency to its API shape.
func ToCurrencyResponse(c *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:          c.Code,
		Kind:          string(c.Kind),
		Enabled:       c.Enabled,
		RateMicroUSD:  c.RateMicroUSD,
		DecimalPlaces: c.DecimalPlaces,
		UpdatedAt:     c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToPaymentResponse maps a domain payment to its API shape.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:            p.ID,
		MerchantID:    p.MerchantID.String(),
		CustomerID:    p.CustomerID.String(),
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		SettlementRef: p.SettlementRef,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.SettledAt != nil {
		s := p.SettledAt.UTC().Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}
