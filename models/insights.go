package models

// MonthlyData is one month's rollup: income and savings amount in cents,
// totalAllocated = savingsAmount + sum of non-savings allocations.
type MonthlyData struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	Income           int64   `json:"income"`
	SavingsRate      float64 `json:"savings_rate"`
	SavingsAmount    int64   `json:"savings_amount"`
	TotalAllocated   int64   `json:"total_allocated"`
	AdjustmentReason *string `json:"adjustment_reason"`
}

type CategoryTotal struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Total int64  `json:"total"`
}

type InsightsData struct {
	AverageIncome        float64         `json:"average_income"`
	AverageSavingsRate   float64         `json:"average_savings_rate"`
	AverageSavingsAmount float64         `json:"average_savings_amount"`
	TotalSaved           int64           `json:"total_saved"`
	TotalMonths          int             `json:"total_months"`
	MonthsWithLowSavings []MonthlyData   `json:"months_with_low_savings"`
	TopCategories        []CategoryTotal `json:"top_categories"`
	MonthlyTrends        []MonthlyData   `json:"monthly_trends"`
}
