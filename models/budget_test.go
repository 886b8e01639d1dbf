package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSavingsAmountRounds(t *testing.T) {
	bm := &BudgetMonth{Income: 1000, SavingsRate: 0.2}
	assert.Equal(t, int64(200), bm.SavingsAmount())

	bm = &BudgetMonth{Income: 999, SavingsRate: 0.155}
	// 999 * 0.155 = 154.845 → 155
	assert.Equal(t, int64(155), bm.SavingsAmount())

	bm = &BudgetMonth{Income: 0, SavingsRate: 0.5}
	assert.Equal(t, int64(0), bm.SavingsAmount())

	bm = &BudgetMonth{Income: 1000, SavingsRate: 0}
	assert.Equal(t, int64(0), bm.SavingsAmount())
}

func TestIsValidCurrency(t *testing.T) {
	for _, code := range ValidCurrencies {
		assert.True(t, IsValidCurrency(code), code)
	}

	assert.False(t, IsValidCurrency("sle"), "codes are case sensitive")
	assert.False(t, IsValidCurrency("XYZ"))
	assert.False(t, IsValidCurrency(""))
}
