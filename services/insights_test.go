package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerise/ledgerise-api/models"
)

func cat(id, name, color string, savings bool) *models.Category {
	return &models.Category{ID: id, Name: name, Color: color, IsSavings: savings}
}

func alloc(categoryID string, amount int64, c *models.Category) models.Allocation {
	return models.Allocation{CategoryID: categoryID, Amount: amount, Category: c}
}

func TestComputeInsightsEmpty(t *testing.T) {
	data := ComputeInsights(nil)

	assert.Zero(t, data.TotalMonths)
	assert.Zero(t, data.AverageIncome)
	assert.Zero(t, data.AverageSavingsRate)
	assert.Zero(t, data.TotalSaved)
	assert.Empty(t, data.MonthlyTrends)
	assert.Empty(t, data.TopCategories)
	assert.Empty(t, data.MonthsWithLowSavings)
	assert.NotNil(t, data.MonthlyTrends, "empty slices, not nil, for JSON")
	assert.NotNil(t, data.TopCategories)
	assert.NotNil(t, data.MonthsWithLowSavings)
}

func TestComputeInsightsTwoMonths(t *testing.T) {
	rent := cat("c-rent", "Utilities", "#10b981", false)
	fun := cat("c-fun", "Fun", "#06b6d4", false)
	savings := cat("c-sav", "Savings", "#6366f1", true)

	// Newest first, the way ListAll returns them
	budgetMonths := []models.BudgetMonth{
		{
			Year: 2026, Month: 2, Income: 2000, SavingsRate: 0.1,
			AdjustmentReason: strPtr("unexpected car repair"),
			Allocations: []models.Allocation{
				alloc("c-rent", 600, rent),
				alloc("c-sav", 999, savings), // ignored everywhere
			},
		},
		{
			Year: 2026, Month: 1, Income: 1000, SavingsRate: 0.2,
			Allocations: []models.Allocation{
				alloc("c-rent", 300, rent),
				alloc("c-fun", 100, fun),
			},
		},
	}

	data := ComputeInsights(budgetMonths)

	assert.Equal(t, 2, data.TotalMonths)
	assert.InDelta(t, 1500.0, data.AverageIncome, 0.001)
	assert.InDelta(t, 0.15, data.AverageSavingsRate, 0.001)
	assert.InDelta(t, 200.0, data.AverageSavingsAmount, 0.001)
	assert.Equal(t, int64(400), data.TotalSaved)

	require.Len(t, data.MonthlyTrends, 2)
	jan, feb := data.MonthlyTrends[0], data.MonthlyTrends[1]
	assert.Equal(t, 1, jan.Month, "trends ascend chronologically")
	assert.Equal(t, int64(200), jan.SavingsAmount)
	assert.Equal(t, int64(600), jan.TotalAllocated, "savings amount plus non-savings allocations")
	assert.Equal(t, 2, feb.Month)
	assert.Equal(t, int64(200), feb.SavingsAmount)
	assert.Equal(t, int64(800), feb.TotalAllocated, "stored savings allocation is excluded")

	require.Len(t, data.MonthsWithLowSavings, 1)
	assert.Equal(t, 2, data.MonthsWithLowSavings[0].Month)
	require.NotNil(t, data.MonthsWithLowSavings[0].AdjustmentReason)
	assert.Equal(t, "unexpected car repair", *data.MonthsWithLowSavings[0].AdjustmentReason)

	require.Len(t, data.TopCategories, 2, "savings category excluded from totals")
	assert.Equal(t, "Utilities", data.TopCategories[0].Name)
	assert.Equal(t, int64(900), data.TopCategories[0].Total)
	assert.Equal(t, "Fun", data.TopCategories[1].Name)
	assert.Equal(t, int64(100), data.TopCategories[1].Total)
}

func TestComputeInsightsTopCategoriesCapped(t *testing.T) {
	var budgetMonths []models.BudgetMonth
	month := models.BudgetMonth{Year: 2026, Month: 1, Income: 1000, SavingsRate: 0.2}
	for i := 0; i < 7; i++ {
		id := string(rune('a' + i))
		month.Allocations = append(month.Allocations,
			alloc("c-"+id, int64(100*(i+1)), cat("c-"+id, "Cat "+id, "#6366f1", false)))
	}
	budgetMonths = append(budgetMonths, month)

	data := ComputeInsights(budgetMonths)

	require.Len(t, data.TopCategories, 5)
	assert.Equal(t, int64(700), data.TopCategories[0].Total, "sorted by total, descending")
	assert.Equal(t, int64(300), data.TopCategories[4].Total)
}

func TestMonthlyTrendsSortsAcrossYears(t *testing.T) {
	budgetMonths := []models.BudgetMonth{
		{Year: 2026, Month: 1, Income: 100, SavingsRate: 0.2},
		{Year: 2025, Month: 12, Income: 100, SavingsRate: 0.2},
		{Year: 2025, Month: 3, Income: 100, SavingsRate: 0.2},
	}

	trends := monthlyTrends(budgetMonths)

	require.Len(t, trends, 3)
	assert.Equal(t, 2025, trends[0].Year)
	assert.Equal(t, 3, trends[0].Month)
	assert.Equal(t, 12, trends[1].Month)
	assert.Equal(t, 2026, trends[2].Year)
}
