package services

import (
	"context"
	"database/sql"
	"sort"

	"github.com/ledgerise/ledgerise-api/models"
)

type InsightsService struct {
	months *BudgetMonthService
}

func NewInsightsService(db *sql.DB) *InsightsService {
	return &InsightsService{months: NewBudgetMonthService(db)}
}

// GetInsights loads the user's full history and derives the rollups.
func (s *InsightsService) GetInsights(ctx context.Context, userID string) (*models.InsightsData, error) {
	budgetMonths, err := s.months.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ComputeInsights(budgetMonths), nil
}

// GetHistory is the per-month rollup, newest first.
func (s *InsightsService) GetHistory(ctx context.Context, userID string) ([]models.MonthlyData, error) {
	budgetMonths, err := s.months.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	trends := monthlyTrends(budgetMonths)
	// Reverse the ascending trend order
	for i, j := 0, len(trends)-1; i < j; i, j = i+1, j-1 {
		trends[i], trends[j] = trends[j], trends[i]
	}
	return trends, nil
}

// monthlyTrends computes the per-month shape, ascending by (year, month).
// Months carry their allocations with categories already joined.
func monthlyTrends(budgetMonths []models.BudgetMonth) []models.MonthlyData {
	sorted := make([]models.BudgetMonth, len(budgetMonths))
	copy(sorted, budgetMonths)
	sort.Slice(sorted, func(i, j int) bool {
		return monthKey(sorted[i].Year, sorted[i].Month) < monthKey(sorted[j].Year, sorted[j].Month)
	})

	trends := []models.MonthlyData{}
	for i := range sorted {
		bm := &sorted[i]
		savingsAmount := bm.SavingsAmount()

		var nonSavingsTotal int64
		for _, a := range bm.Allocations {
			if a.Category != nil && a.Category.IsSavings {
				continue
			}
			nonSavingsTotal += a.Amount
		}

		trends = append(trends, models.MonthlyData{
			Year:             bm.Year,
			Month:            bm.Month,
			Income:           bm.Income,
			SavingsRate:      bm.SavingsRate,
			SavingsAmount:    savingsAmount,
			TotalAllocated:   savingsAmount + nonSavingsTotal,
			AdjustmentReason: bm.AdjustmentReason,
		})
	}
	return trends
}

// ComputeInsights derives every insight from a user's budget months.
// Zero months yields zero averages and empty lists.
func ComputeInsights(budgetMonths []models.BudgetMonth) *models.InsightsData {
	data := &models.InsightsData{
		MonthsWithLowSavings: []models.MonthlyData{},
		TopCategories:        []models.CategoryTotal{},
		MonthlyTrends:        []models.MonthlyData{},
	}

	if len(budgetMonths) == 0 {
		return data
	}

	data.MonthlyTrends = monthlyTrends(budgetMonths)
	data.TotalMonths = len(data.MonthlyTrends)

	var incomeSum, savingsSum int64
	var rateSum float64
	for _, m := range data.MonthlyTrends {
		incomeSum += m.Income
		savingsSum += m.SavingsAmount
		rateSum += m.SavingsRate
		if m.SavingsRate < models.MinSavingsRate {
			data.MonthsWithLowSavings = append(data.MonthsWithLowSavings, m)
		}
	}

	n := float64(data.TotalMonths)
	data.AverageIncome = float64(incomeSum) / n
	data.AverageSavingsRate = rateSum / n
	data.AverageSavingsAmount = float64(savingsSum) / n
	data.TotalSaved = savingsSum

	// Per-category non-savings totals across every month
	totals := make(map[string]*models.CategoryTotal)
	var order []string
	for i := range budgetMonths {
		for _, a := range budgetMonths[i].Allocations {
			if a.Category == nil || a.Category.IsSavings {
				continue
			}
			if t, ok := totals[a.CategoryID]; ok {
				t.Total += a.Amount
			} else {
				totals[a.CategoryID] = &models.CategoryTotal{
					Name:  a.Category.Name,
					Color: a.Category.Color,
					Total: a.Amount,
				}
				order = append(order, a.CategoryID)
			}
		}
	}

	all := make([]models.CategoryTotal, 0, len(order))
	for _, id := range order {
		all = append(all, *totals[id])
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Total > all[j].Total })
	if len(all) > 5 {
		all = all[:5]
	}
	data.TopCategories = all

	return data
}
