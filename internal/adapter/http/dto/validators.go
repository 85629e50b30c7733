package dto

import (
	"strings"

	"multicurrency-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	}
}

// validateCurrencyCode accepts uppercase registry codes. Lowercase input is
// tolerated here; handlers canonicalize before hitting the service layer.
func validateCurrencyCode(fl validator.FieldLevel) bool {
	return domain.ValidCurrencyCode(strings.ToUpper(fl.Field().String()))
}

// CanonicalCode uppercases a currency code for registry lookups.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
