package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerise/ledgerise-api/models"
)

func strPtr(s string) *string { return &s }

func TestValidateSavingsRate(t *testing.T) {
	tests := []struct {
		name       string
		rate       float64
		reason     *string
		wantErr    bool
		wantReason *string
	}{
		{"at the floor needs no reason", 0.20, nil, false, nil},
		{"above the floor needs no reason", 0.35, nil, false, nil},
		{"full rate", 1.0, nil, false, nil},
		{"zero rate with reason", 0.0, strPtr("saving nothing this month"), false, strPtr("saving nothing this month")},
		{"below floor without reason", 0.10, nil, true, nil},
		{"below floor with short reason", 0.10, strPtr("short"), true, nil},
		{"below floor with whitespace-padded short reason", 0.10, strPtr("   short    "), true, nil},
		{"below floor with adequate reason", 0.10, strPtr("medical expenses this month"), false, strPtr("medical expenses this month")},
		{"negative rate", -0.01, nil, true, nil},
		{"rate above one", 1.01, nil, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, err := ValidateSavingsRate(tt.rate, tt.reason)
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestValidateSavingsRateCountsReasonInRunes(t *testing.T) {
	// 10 runes of multibyte text is a valid reason even though it is
	// more than 10 bytes.
	reason, err := ValidateSavingsRate(0.10, strPtr("dépenses é"))
	require.NoError(t, err)
	require.NotNil(t, reason)

	_, err = ValidateSavingsRate(0.10, strPtr("dépense é"))
	assert.Error(t, err, "9 runes is still too short")
}

func seedMonth(year, month int, income int64) models.BudgetMonth {
	return models.BudgetMonth{Year: year, Month: month, Income: income}
}

func TestSeedIncomeUsesPriorMonthOnly(t *testing.T) {
	t.Run("no months seeds zero", func(t *testing.T) {
		assert.Zero(t, seedIncome(nil, 2026, 9))
	})

	t.Run("a later month never seeds an earlier one", func(t *testing.T) {
		months := []models.BudgetMonth{seedMonth(2026, 12, 5000)}
		assert.Zero(t, seedIncome(months, 2026, 9))
	})

	t.Run("most recent prior month wins", func(t *testing.T) {
		months := []models.BudgetMonth{
			seedMonth(2026, 3, 1000),
			seedMonth(2026, 7, 2000),
			seedMonth(2026, 12, 9000),
		}
		assert.Equal(t, int64(2000), seedIncome(months, 2026, 9))
	})

	t.Run("prior month found across a year boundary", func(t *testing.T) {
		months := []models.BudgetMonth{
			seedMonth(2026, 9, 3000),
			seedMonth(2026, 12, 4000),
		}
		assert.Equal(t, int64(4000), seedIncome(months, 2027, 1))
	})

	t.Run("the target month itself never seeds", func(t *testing.T) {
		months := []models.BudgetMonth{seedMonth(2026, 9, 3000)}
		assert.Zero(t, seedIncome(months, 2026, 9))
	})
}

func TestValidateSavingsRateDropsReasonAtFloor(t *testing.T) {
	// A reason supplied alongside a compliant rate is not persisted.
	reason, err := ValidateSavingsRate(0.25, strPtr("left over from last month"))
	require.NoError(t, err)
	assert.Nil(t, reason)
}
