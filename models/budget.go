package models

import (
	"math"
	"time"
)

// MinSavingsRate is the floor below which a savings-rate change
// requires a written justification.
const MinSavingsRate = 0.20

// BudgetMonth is the per-user, per-calendar-month record.
// Income is stored in cents.
type BudgetMonth struct {
	ID               string       `json:"id"`
	UserID           string       `json:"user_id"`
	Year             int          `json:"year"`
	Month            int          `json:"month"`
	Income           int64        `json:"income"`
	SavingsRate      float64      `json:"savings_rate"`
	AdjustmentReason *string      `json:"adjustment_reason"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	Allocations      []Allocation `json:"allocations"`
}

// SavingsAmount is derived, never stored: income times savings rate,
// rounded to the nearest cent.
func (bm *BudgetMonth) SavingsAmount() int64 {
	return int64(math.Round(float64(bm.Income) * bm.SavingsRate))
}

// Allocation assigns an amount (in cents) to one category within one
// budget month. At most one row exists per (budget month, category).
type Allocation struct {
	ID            string    `json:"id"`
	BudgetMonthID string    `json:"budget_month_id"`
	CategoryID    string    `json:"category_id"`
	Amount        int64     `json:"amount"`
	Category      *Category `json:"category,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UpdateIncomeRequest struct {
	Income int64 `json:"income"`
}

type UpdateSavingsRateRequest struct {
	SavingsRate float64 `json:"savings_rate"`
	Reason      *string `json:"reason,omitempty"`
}

type UpsertAllocationRequest struct {
	Amount int64 `json:"amount"`
}
