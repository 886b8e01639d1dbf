package services

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/utils"
)

type BudgetMonthService struct {
	db *sql.DB
}

func NewBudgetMonthService(db *sql.DB) *BudgetMonthService {
	return &BudgetMonthService{db: db}
}

func scanBudgetMonth(row *sql.Row) (*models.BudgetMonth, error) {
	var bm models.BudgetMonth
	var reason sql.NullString
	err := row.Scan(&bm.ID, &bm.UserID, &bm.Year, &bm.Month, &bm.Income,
		&bm.SavingsRate, &reason, &bm.CreatedAt, &bm.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		bm.AdjustmentReason = &reason.String
	}
	return &bm, nil
}

const budgetMonthColumns = `id, user_id, year, month, income, savings_rate, adjustment_reason, created_at, updated_at`

func (s *BudgetMonthService) getOwned(ctx context.Context, q rowQuerier, userID, monthID string) (*models.BudgetMonth, error) {
	return scanBudgetMonth(q.QueryRowContext(ctx, `
		SELECT `+budgetMonthColumns+`
		FROM budget_months
		WHERE id = $1 AND user_id = $2
	`, monthID, userID))
}

// loadAllocations returns a month's allocations joined with their
// category, sorted by category sort order.
func (s *BudgetMonthService) loadAllocations(ctx context.Context, monthID string) ([]models.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.budget_month_id, a.category_id, a.amount, a.created_at, a.updated_at,
		       c.id, c.user_id, c.name, c.color, c.is_savings, c.is_default, c.sort_order, c.created_at, c.updated_at
		FROM allocations a
		JOIN categories c ON a.category_id = c.id
		WHERE a.budget_month_id = $1
		ORDER BY c.sort_order ASC
	`, monthID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	allocations := []models.Allocation{}
	for rows.Next() {
		var a models.Allocation
		var cat models.Category
		if err := rows.Scan(&a.ID, &a.BudgetMonthID, &a.CategoryID, &a.Amount, &a.CreatedAt, &a.UpdatedAt,
			&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.IsSavings, &cat.IsDefault,
			&cat.SortOrder, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		a.Category = &cat
		allocations = append(allocations, a)
	}

	return allocations, rows.Err()
}

// GetMonth returns the month record with its allocations, without
// creating anything.
func (s *BudgetMonthService) GetMonth(ctx context.Context, userID string, year, month int) (*models.BudgetMonth, error) {
	if !ValidYearMonth(year, month) {
		return nil, validationErr("Invalid year or month")
	}

	bm, err := scanBudgetMonth(s.db.QueryRowContext(ctx, `
		SELECT `+budgetMonthColumns+`
		FROM budget_months
		WHERE user_id = $1 AND year = $2 AND month = $3
	`, userID, year, month))
	if err != nil {
		return nil, err
	}

	bm.Allocations, err = s.loadAllocations(ctx, bm.ID)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// seedIncome returns the income of the most recent month strictly
// before (year, month), or 0 when no prior month exists. Later months
// never seed an earlier one.
func seedIncome(months []models.BudgetMonth, year, month int) int64 {
	target := monthKey(year, month)
	best := -1
	var income int64
	for _, m := range months {
		key := monthKey(m.Year, m.Month)
		if key >= target || key <= best {
			continue
		}
		best = key
		income = m.Income
	}
	return income
}

// GetOrCreate returns the existing month or creates one, seeding income
// from the user's most recent chronologically-prior month. New months
// start at the default 20% savings rate. Creation is limited to the
// editable window.
func (s *BudgetMonthService) GetOrCreate(ctx context.Context, userID string, year, month int) (*models.BudgetMonth, error) {
	if !ValidYearMonth(year, month) {
		return nil, validationErr("Invalid year or month")
	}

	bm, err := s.GetMonth(ctx, userID, year, month)
	if err == nil {
		return bm, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	if !IsEditableMonth(year, month) {
		return nil, stateErr("Cannot create a budget month outside the editable window")
	}

	created := &models.BudgetMonth{
		ID:          uuid.New().String(),
		UserID:      userID,
		Year:        year,
		Month:       month,
		SavingsRate: models.MinSavingsRate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Allocations: []models.Allocation{},
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		// Re-check inside the transaction so a concurrent GetOrCreate
		// for the same month cannot insert twice.
		var existingID string
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM budget_months WHERE user_id = $1 AND year = $2 AND month = $3
		`, userID, year, month).Scan(&existingID)
		if err == nil {
			created.ID = existingID
			return nil
		}
		if err != sql.ErrNoRows {
			return err
		}

		// Seed income from the most recent prior month, 0 if none
		seedRows, err := tx.QueryContext(ctx, `
			SELECT year, month, income FROM budget_months WHERE user_id = $1
		`, userID)
		if err != nil {
			return err
		}
		var existing []models.BudgetMonth
		for seedRows.Next() {
			var m models.BudgetMonth
			if err := seedRows.Scan(&m.Year, &m.Month, &m.Income); err != nil {
				seedRows.Close()
				return err
			}
			existing = append(existing, m)
		}
		seedRows.Close()
		if err := seedRows.Err(); err != nil {
			return err
		}
		created.Income = seedIncome(existing, year, month)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO budget_months (id, user_id, year, month, income, savings_rate, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, created.ID, created.UserID, created.Year, created.Month, created.Income,
			created.SavingsRate, created.CreatedAt, created.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.GetMonth(ctx, userID, year, month)
}

// UpdateIncome sets the month's income in cents.
func (s *BudgetMonthService) UpdateIncome(ctx context.Context, userID, monthID string, income int64) error {
	if income < 0 {
		return validationErr("Income cannot be negative")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE budget_months SET income = $1, updated_at = $2 WHERE id = $3 AND user_id = $4
	`, income, time.Now(), monthID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ValidateSavingsRate applies the savings-floor rule: rates below 20%
// need a justification of at least 10 characters. It returns the reason
// to persist, nil when the rate is at or above the floor.
func ValidateSavingsRate(rate float64, reason *string) (*string, error) {
	if rate < 0 || rate > 1 {
		return nil, validationErr("Savings rate must be between 0% and 100%")
	}

	if rate >= models.MinSavingsRate {
		return nil, nil
	}

	if reason == nil || utf8.RuneCountInString(strings.TrimSpace(*reason)) < 10 {
		return nil, validationErr("Please provide a reason (at least 10 characters) for saving less than 20%")
	}
	return reason, nil
}

// UpdateSavingsRate sets the rate, persisting the adjustment reason
// only while the rate stays below the floor.
func (s *BudgetMonthService) UpdateSavingsRate(ctx context.Context, userID, monthID string, rate float64, reason *string) error {
	persistedReason, err := ValidateSavingsRate(rate, reason)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE budget_months SET savings_rate = $1, adjustment_reason = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`, rate, persistedReason, time.Now(), monthID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns every budget month of the user, newest first, each
// with its allocations joined with categories.
func (s *BudgetMonthService) ListAll(ctx context.Context, userID string) ([]models.BudgetMonth, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+budgetMonthColumns+`
		FROM budget_months
		WHERE user_id = $1
		ORDER BY year DESC, month DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	months := []models.BudgetMonth{}
	for rows.Next() {
		var bm models.BudgetMonth
		var reason sql.NullString
		if err := rows.Scan(&bm.ID, &bm.UserID, &bm.Year, &bm.Month, &bm.Income,
			&bm.SavingsRate, &reason, &bm.CreatedAt, &bm.UpdatedAt); err != nil {
			return nil, err
		}
		if reason.Valid {
			bm.AdjustmentReason = &reason.String
		}
		bm.Allocations = []models.Allocation{}
		months = append(months, bm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// One query for every allocation of the user, grouped in memory
	allocRows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.budget_month_id, a.category_id, a.amount, a.created_at, a.updated_at,
		       c.id, c.user_id, c.name, c.color, c.is_savings, c.is_default, c.sort_order, c.created_at, c.updated_at
		FROM allocations a
		JOIN categories c ON a.category_id = c.id
		JOIN budget_months bm ON a.budget_month_id = bm.id
		WHERE bm.user_id = $1
		ORDER BY c.sort_order ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer allocRows.Close()

	byMonth := make(map[string][]models.Allocation)
	for allocRows.Next() {
		var a models.Allocation
		var cat models.Category
		if err := allocRows.Scan(&a.ID, &a.BudgetMonthID, &a.CategoryID, &a.Amount, &a.CreatedAt, &a.UpdatedAt,
			&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.IsSavings, &cat.IsDefault,
			&cat.SortOrder, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		a.Category = &cat
		byMonth[a.BudgetMonthID] = append(byMonth[a.BudgetMonthID], a)
	}
	if err := allocRows.Err(); err != nil {
		return nil, err
	}

	for i := range months {
		if allocs, ok := byMonth[months[i].ID]; ok {
			months[i].Allocations = allocs
		}
	}

	return months, nil
}
