package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalCode(t *testing.T) {
	assert.Equal(t, "USD", CanonicalCode("usd"))
	assert.Equal(t, "NATIVE", CanonicalCode("  native "))
	assert.Equal(t, "EUR", CanonicalCode("EUR"))
}
