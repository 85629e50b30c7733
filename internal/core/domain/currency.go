package domain

import (
	"regexp"
	"time"
)

// MicroUSDPerUSD is the fixed-point scale of exchange rates: a rate of
// 1_000_000 means one unit of the currency is worth exactly one USD.
const MicroUSDPerUSD = 1_000_000

// CurrencyKind distinguishes the native settlement asset from externally
// reconciled currencies. It is resolved once at registration time so the
// settlement and withdrawal branches never compare code strings.
type CurrencyKind string

const (
	CurrencyKindNative   CurrencyKind = "NATIVE_ASSET"
	CurrencyKindExternal CurrencyKind = "EXTERNAL"
)

// Currency is a registry entry, keyed uniquely by code. Entries are only
// ever inserted or overwritten, never deleted.
type Currency struct {
	Code          string       `json:"code"`
	Kind          CurrencyKind `json:"kind"`
	Enabled       bool         `json:"enabled"`
	RateMicroUSD  int64        `json:"rate_micro_usd"` // invariant: > 0
	DecimalPlaces int32        `json:"decimal_places"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// IsNative returns true for the native settlement asset.
func (c *Currency) IsNative() bool {
	return c.Kind == CurrencyKindNative
}

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{2,8}$`)

// ValidCurrencyCode reports whether code is an acceptable registry key
// (2-8 upper-case ASCII letters).
func ValidCurrencyCode(code string) bool {
	return currencyCodePattern.MatchString(code)
}

// ResolveKind classifies a code against the configured native asset code.
func ResolveKind(code, nativeCode string) CurrencyKind {
	if code == nativeCode {
		return CurrencyKindNative
	}
	return CurrencyKindExternal
}
