package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/utils"
)

type AllocationService struct {
	db     *sql.DB
	months *BudgetMonthService
}

func NewAllocationService(db *sql.DB) *AllocationService {
	return &AllocationService{db: db, months: NewBudgetMonthService(db)}
}

// List returns a month's allocations joined with categories. An
// unknown or foreign month yields an empty list, not an error.
func (s *AllocationService) List(ctx context.Context, userID, monthID string) ([]models.Allocation, error) {
	_, err := s.months.getOwned(ctx, s.db, userID, monthID)
	if err == ErrNotFound {
		return []models.Allocation{}, nil
	}
	if err != nil {
		return nil, err
	}

	return s.months.loadAllocations(ctx, monthID)
}

// allocationWriteKind classifies an upsert amount: negative is
// rejected, zero clears the row, anything positive writes it.
func allocationWriteKind(amount int64) (clearRow bool, err error) {
	if amount < 0 {
		return false, validationErr("Amount cannot be negative")
	}
	return amount == 0, nil
}

// Upsert writes the single allocation row for (month, category).
// Amount zero deletes the row instead.
func (s *AllocationService) Upsert(ctx context.Context, userID, monthID, categoryID string, amount int64) error {
	clearRow, err := allocationWriteKind(amount)
	if err != nil {
		return err
	}

	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := s.months.getOwned(ctx, tx, userID, monthID); err != nil {
			return err
		}

		var isSavings bool
		err := tx.QueryRowContext(ctx, `
			SELECT is_savings FROM categories WHERE id = $1 AND user_id = $2
		`, categoryID, userID).Scan(&isSavings)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if isSavings {
			return stateErr("Savings allocation is calculated automatically")
		}

		if clearRow {
			_, err := tx.ExecContext(ctx, `
				DELETE FROM allocations WHERE budget_month_id = $1 AND category_id = $2
			`, monthID, categoryID)
			return err
		}

		return upsertAllocation(ctx, tx, monthID, categoryID, amount)
	})
}

// upsertAllocation inserts or updates the single row for the pair.
// Callers have already validated ownership and the savings rule.
func upsertAllocation(ctx context.Context, tx *sql.Tx, monthID, categoryID string, amount int64) error {
	var existingID string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM allocations WHERE budget_month_id = $1 AND category_id = $2
	`, monthID, categoryID).Scan(&existingID)

	if err == sql.ErrNoRows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO allocations (id, budget_month_id, category_id, amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), monthID, categoryID, amount, time.Now(), time.Now())
		return err
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE allocations SET amount = $1, updated_at = $2 WHERE id = $3
	`, amount, time.Now(), existingID)
	return err
}

// Delete removes an allocation by id.
func (s *AllocationService) Delete(ctx context.Context, userID, allocationID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM allocations a
		USING budget_months bm
		WHERE a.id = $1 AND a.budget_month_id = bm.id AND bm.user_id = $2
	`, allocationID, userID)
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

// RemoveFromMonth deletes the allocation for (month, category) if
// present. Absence is not an error.
func (s *AllocationService) RemoveFromMonth(ctx context.Context, userID, monthID, categoryID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := s.months.getOwned(ctx, tx, userID, monthID); err != nil {
			return err
		}

		var isSavings bool
		err := tx.QueryRowContext(ctx, `
			SELECT is_savings FROM categories WHERE id = $1 AND user_id = $2
		`, categoryID, userID).Scan(&isSavings)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if isSavings {
			return stateErr("Savings allocation is calculated automatically")
		}

		_, err = tx.ExecContext(ctx, `
			DELETE FROM allocations WHERE budget_month_id = $1 AND category_id = $2
		`, monthID, categoryID)
		return err
	})
}

// CopyExplicit upserts every non-savings allocation of the source month
// into the target month. Idempotent.
func (s *AllocationService) CopyExplicit(ctx context.Context, userID, fromMonthID, toMonthID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := s.months.getOwned(ctx, tx, userID, toMonthID); err != nil {
			return err
		}
		if _, err := s.months.getOwned(ctx, tx, userID, fromMonthID); err != nil {
			return err
		}
		return copyAllocations(ctx, tx, userID, fromMonthID, toMonthID)
	})
}

// CopyFromPrevious copies from the user's most recent budget month
// chronologically before the target. The target must be editable.
func (s *AllocationService) CopyFromPrevious(ctx context.Context, userID, targetMonthID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		target, err := s.months.getOwned(ctx, tx, userID, targetMonthID)
		if err != nil {
			return err
		}

		if !IsEditableMonth(target.Year, target.Month) {
			return stateErr("Cannot copy into a month outside the editable window")
		}

		// Most recent prior month, not necessarily the adjacent one
		var sourceID string
		err = tx.QueryRowContext(ctx, `
			SELECT id FROM budget_months
			WHERE user_id = $1 AND (year * 12 + month) < $2
			ORDER BY year DESC, month DESC
			LIMIT 1
		`, userID, monthKey(target.Year, target.Month)).Scan(&sourceID)
		if err == sql.ErrNoRows {
			return stateErr("No previous month found to copy from")
		}
		if err != nil {
			return err
		}

		return copyAllocations(ctx, tx, userID, sourceID, targetMonthID)
	})
}

type allocationPair struct {
	categoryID string
	amount     int64
}

// copyablePairs reduces a source month's allocations to the set that
// copy-forward writes into the target: savings rows are dropped and
// amounts are carried unchanged. Deterministic, so copying the same
// source again upserts the identical set.
func copyablePairs(allocations []models.Allocation) []allocationPair {
	pairs := []allocationPair{}
	for _, a := range allocations {
		if a.Category != nil && a.Category.IsSavings {
			continue
		}
		pairs = append(pairs, allocationPair{categoryID: a.CategoryID, amount: a.Amount})
	}
	return pairs
}

func copyAllocations(ctx context.Context, tx *sql.Tx, userID, fromMonthID, toMonthID string) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT a.category_id, a.amount, c.is_savings
		FROM allocations a
		JOIN categories c ON a.category_id = c.id
		WHERE a.budget_month_id = $1 AND c.user_id = $2
	`, fromMonthID, userID)
	if err != nil {
		return err
	}

	var source []models.Allocation
	for rows.Next() {
		var a models.Allocation
		var cat models.Category
		if err := rows.Scan(&a.CategoryID, &a.Amount, &cat.IsSavings); err != nil {
			rows.Close()
			return err
		}
		a.Category = &cat
		source = append(source, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range copyablePairs(source) {
		if err := upsertAllocation(ctx, tx, toMonthID, p.categoryID, p.amount); err != nil {
			return err
		}
	}
	return nil
}
