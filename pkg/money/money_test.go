package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loan-servicing/pkg/money"
)

func TestNewCurrency(t *testing.T) {
	t.Run("accepts a three-letter uppercase code", func(t *testing.T) {
		c, err := money.NewCurrency("USD")
		require.NoError(t, err)
		assert.Equal(t, "USD", c.Code())
		assert.Equal(t, "USD", c.String())
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		for _, code := range []string{"", "us", "usd", "USDT", "U$D", "12 "} {
			_, err := money.NewCurrency(code)
			assert.Error(t, err, "code %q", code)
		}
	})
}

func TestMustCurrency(t *testing.T) {
	assert.Equal(t, "EUR", money.MustCurrency("EUR").Code())

	assert.Panics(t, func() {
		money.MustCurrency("euro")
	})
}
