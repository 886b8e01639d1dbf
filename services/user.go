package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/ledgerise/ledgerise-api/models"
)

type UserService struct {
	db         *sql.DB
	categories *CategoryService
	months     *BudgetMonthService
}

func NewUserService(db *sql.DB) *UserService {
	return &UserService{
		db:         db,
		categories: NewCategoryService(db),
		months:     NewBudgetMonthService(db),
	}
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	var totpSecret sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, currency, totp_secret, totp_enabled, created_at, updated_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&user.ID, &user.Email, &user.Name, &user.Currency,
		&totpSecret, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if totpSecret.Valid {
		user.TOTPSecret = totpSecret.String
	}
	return &user, nil
}

// UpdateCurrency sets the user's preferred currency code.
func (s *UserService) UpdateCurrency(ctx context.Context, userID, currency string) error {
	if !models.IsValidCurrency(currency) {
		return validationErr("Invalid currency")
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET currency = $1, updated_at = $2 WHERE id = $3
	`, currency, time.Now(), userID)
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

// OnboardingStatus reports whether the user still needs the first-run
// setup: no categories or no budget months yet.
func (s *UserService) OnboardingStatus(ctx context.Context, userID string) (*models.OnboardingStatus, error) {
	user, err := s.GetByID(ctx, userID)
	if err == ErrNotFound {
		return &models.OnboardingStatus{NeedsOnboarding: true}, nil
	}
	if err != nil {
		return nil, err
	}

	var categoryCount, monthCount int
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM categories WHERE user_id = $1),
			(SELECT COUNT(*) FROM budget_months WHERE user_id = $1)
	`, userID).Scan(&categoryCount, &monthCount)
	if err != nil {
		return nil, err
	}

	return &models.OnboardingStatus{
		NeedsOnboarding: categoryCount == 0 || monthCount == 0,
		User:            user,
	}, nil
}

// CompleteOnboarding sets the currency, seeds the default categories
// and ensures the current month exists with the supplied income.
// Safe to run more than once.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID string, req models.OnboardingRequest) error {
	if req.Income < 0 {
		return validationErr("Income cannot be negative")
	}

	if err := s.UpdateCurrency(ctx, userID, req.Currency); err != nil {
		return err
	}

	if err := s.categories.SeedDefaults(ctx, userID); err != nil {
		return err
	}

	year, month := CurrentMonth()
	bm, err := s.months.GetOrCreate(ctx, userID, year, month)
	if err != nil {
		return err
	}

	return s.months.UpdateIncome(ctx, userID, bm.ID, req.Income)
}
