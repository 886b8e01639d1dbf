package services

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/utils"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// validateCategoryName trims and checks a category name. The trimmed
// name is returned.
func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationErr("Category name is required")
	}
	if utf8.RuneCountInString(name) > 50 {
		return "", validationErr("Category name must be 50 characters or less")
	}
	return name, nil
}

func validateHexColor(color string) error {
	if !hexColorRe.MatchString(color) {
		return validationErr("Please enter a valid hex color")
	}
	return nil
}

type CategoryService struct {
	db *sql.DB
}

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List returns the user's categories ordered by sort order.
func (s *CategoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, color, is_savings, is_default, sort_order, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY sort_order ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.IsSavings,
			&cat.IsDefault, &cat.SortOrder, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

func (s *CategoryService) getOwned(ctx context.Context, q rowQuerier, userID, categoryID string) (*models.Category, error) {
	var cat models.Category
	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, name, color, is_savings, is_default, sort_order, created_at, updated_at
		FROM categories
		WHERE id = $1 AND user_id = $2
	`, categoryID, userID).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Color, &cat.IsSavings,
		&cat.IsDefault, &cat.SortOrder, &cat.CreatedAt, &cat.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// Create adds a non-savings category at the end of the sort order.
func (s *CategoryService) Create(ctx context.Context, userID string, req models.CreateCategoryRequest) (*models.Category, error) {
	name, err := validateCategoryName(req.Name)
	if err != nil {
		return nil, err
	}

	color := req.Color
	if color == "" {
		color = models.DefaultColor
	}
	if err := validateHexColor(color); err != nil {
		return nil, err
	}

	cat := &models.Category{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM categories WHERE user_id = $1 AND name = $2)
		`, userID, name).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return conflictErr("A category with this name already exists")
		}

		// New categories go after everything the user already has
		var maxSortOrder int
		if err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sort_order), -1) FROM categories WHERE user_id = $1
		`, userID).Scan(&maxSortOrder); err != nil {
			return err
		}
		cat.SortOrder = maxSortOrder + 1

		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, user_id, name, color, is_savings, is_default, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, FALSE, FALSE, $5, $6, $7)
		`, cat.ID, cat.UserID, cat.Name, cat.Color, cat.SortOrder, cat.CreatedAt, cat.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}

	return cat, nil
}

// Update renames and/or recolors a category. The Savings category can
// never be renamed.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, req models.UpdateCategoryRequest) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		cat, err := s.getOwned(ctx, tx, userID, categoryID)
		if err != nil {
			return err
		}

		if cat.IsSavings && req.Name != nil {
			return stateErr("Cannot rename the Savings category")
		}

		name := cat.Name
		if req.Name != nil {
			name, err = validateCategoryName(*req.Name)
			if err != nil {
				return err
			}

			var existingID string
			err = tx.QueryRowContext(ctx, `
				SELECT id FROM categories WHERE user_id = $1 AND name = $2
			`, userID, name).Scan(&existingID)
			if err != nil && err != sql.ErrNoRows {
				return err
			}
			if err == nil && existingID != categoryID {
				return conflictErr("A category with this name already exists")
			}
		}

		color := cat.Color
		if req.Color != nil {
			if err := validateHexColor(*req.Color); err != nil {
				return err
			}
			color = *req.Color
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE categories SET name = $1, color = $2, updated_at = $3 WHERE id = $4
		`, name, color, time.Now(), categoryID)
		return err
	})
}

// Delete removes a category and every allocation referencing it.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		cat, err := s.getOwned(ctx, tx, userID, categoryID)
		if err != nil {
			return err
		}

		if cat.IsSavings {
			return stateErr("Cannot delete the Savings category")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM allocations WHERE category_id = $1`, categoryID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, categoryID)
		return err
	})
}

// Reorder assigns sort_order = position for each id, in order.
func (s *CategoryService) Reorder(ctx context.Context, userID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 || len(categoryIDs) > 100 {
		return validationErr("Invalid category order")
	}

	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		for i, id := range categoryIDs {
			result, err := tx.ExecContext(ctx, `
				UPDATE categories SET sort_order = $1, updated_at = $2 WHERE id = $3 AND user_id = $4
			`, i, time.Now(), id, userID)
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
		}
		return nil
	})
}

// SeedDefaults creates the default category set for a user,
// skipping any name that already exists. Idempotent.
func (s *CategoryService) SeedDefaults(ctx context.Context, userID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		for _, def := range models.DefaultCategories {
			var exists bool
			if err := tx.QueryRowContext(ctx, `
				SELECT EXISTS(SELECT 1 FROM categories WHERE user_id = $1 AND name = $2)
			`, userID, def.Name).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO categories (id, user_id, name, color, is_savings, is_default, sort_order, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, $8)
			`, uuid.New().String(), userID, def.Name, def.Color, def.IsSavings, def.SortOrder, time.Now(), time.Now())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
