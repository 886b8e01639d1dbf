package services

import (
	"context"
	"database/sql"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/utils"
)

// AdminService hosts the administrative account-reconciliation sweep.
// It is never exposed to end users.
type AdminService struct {
	db *sql.DB
}

func NewAdminService(db *sql.DB) *AdminService {
	return &AdminService{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type credentialInfo struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// pickUserToKeep selects the account that survives the merge: the
// caller's preference when it matches, otherwise most budget months,
// then most allocations, then most categories, then oldest account.
func pickUserToKeep(summaries []models.UserSummary, preferredUserID string) models.UserSummary {
	if preferredUserID != "" {
		for _, s := range summaries {
			if s.UserID == preferredUserID {
				return s
			}
		}
	}

	sorted := make([]models.UserSummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.BudgetMonths != b.BudgetMonths {
			return a.BudgetMonths > b.BudgetMonths
		}
		if a.Allocations != b.Allocations {
			return a.Allocations > b.Allocations
		}
		if a.Categories != b.Categories {
			return a.Categories > b.Categories
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return sorted[0]
}

// pickPrimaryCredential keeps the newest credential of the kept user,
// falling back to the newest credential among all matches.
func pickPrimaryCredential(credentials []credentialInfo, keepUserID string) *credentialInfo {
	newest := func(creds []credentialInfo) *credentialInfo {
		if len(creds) == 0 {
			return nil
		}
		best := creds[0]
		for _, c := range creds[1:] {
			if c.CreatedAt.After(best.CreatedAt) {
				best = c
			}
		}
		return &best
	}

	var owned []credentialInfo
	for _, c := range credentials {
		if c.UserID == keepUserID {
			owned = append(owned, c)
		}
	}
	if primary := newest(owned); primary != nil {
		return primary
	}
	return newest(credentials)
}

// buildReconcilePlan partitions the matched accounts without touching
// the database.
func buildReconcilePlan(normalizedEmail string, summaries []models.UserSummary,
	credentials []credentialInfo, keepUserID string, allowDeleteWithData bool) *models.ReconcilePlan {

	keepUser := pickUserToKeep(summaries, keepUserID)
	primary := pickPrimaryCredential(credentials, keepUser.UserID)

	plan := &models.ReconcilePlan{
		NormalizedEmail:     normalizedEmail,
		KeepUserID:          keepUser.UserID,
		Users:               summaries,
		DuplicateUserIDs:    []string{},
		UsersToDelete:       []string{},
		SkippedUserIDs:      []string{},
		CredentialsToDelete: []string{},
	}
	if primary != nil {
		plan.PrimaryCredentialID = primary.ID
	}

	for _, s := range summaries {
		if s.UserID == keepUser.UserID {
			continue
		}
		plan.DuplicateUserIDs = append(plan.DuplicateUserIDs, s.UserID)
		if allowDeleteWithData || !s.HasData {
			plan.UsersToDelete = append(plan.UsersToDelete, s.UserID)
		} else {
			plan.SkippedUserIDs = append(plan.SkippedUserIDs, s.UserID)
		}
	}

	for _, c := range credentials {
		if primary != nil && c.ID == primary.ID {
			continue
		}
		plan.CredentialsToDelete = append(plan.CredentialsToDelete, c.ID)
	}

	return plan
}

func (s *AdminService) userSummary(ctx context.Context, userID, email string, createdAt time.Time) (models.UserSummary, error) {
	summary := models.UserSummary{UserID: userID, Email: email, CreatedAt: createdAt}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM budget_months WHERE user_id = $1),
			(SELECT COUNT(*) FROM categories WHERE user_id = $1),
			(SELECT COUNT(*) FROM allocations a JOIN budget_months bm ON a.budget_month_id = bm.id WHERE bm.user_id = $1),
			(SELECT COUNT(*) FROM credentials WHERE user_id = $1),
			(SELECT COUNT(*) FROM sessions WHERE user_id = $1)
	`, userID).Scan(&summary.BudgetMonths, &summary.Categories, &summary.Allocations,
		&summary.Credentials, &summary.Sessions)
	if err != nil {
		return summary, err
	}

	summary.HasData = summary.BudgetMonths > 0 || summary.Categories > 0 || summary.Allocations > 0
	return summary, nil
}

// ResolveDuplicateEmail merges accounts sharing a normalized email.
// Dry-run (the default) returns the plan without mutating anything.
func (s *AdminService) ResolveDuplicateEmail(ctx context.Context, req models.ReconcileEmailRequest) (*models.ReconcilePlan, error) {
	normalized := normalizeEmail(req.Email)
	if normalized == "" {
		return nil, validationErr("Email is required")
	}

	userRows, err := s.db.QueryContext(ctx, `
		SELECT id, email, created_at FROM users WHERE LOWER(TRIM(email)) = $1
	`, normalized)
	if err != nil {
		return nil, err
	}
	defer userRows.Close()

	type userRow struct {
		id        string
		email     string
		createdAt time.Time
	}
	var matched []userRow
	for userRows.Next() {
		var u userRow
		if err := userRows.Scan(&u.id, &u.email, &u.createdAt); err != nil {
			return nil, err
		}
		matched = append(matched, u)
	}
	if err := userRows.Err(); err != nil {
		return nil, err
	}

	if len(matched) == 0 {
		return &models.ReconcilePlan{
			NormalizedEmail: normalized,
			Users:           []models.UserSummary{},
			Message:         "No users found for this email.",
			DryRun:          req.DryRun == nil || *req.DryRun,
		}, nil
	}

	credRows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, created_at FROM credentials
		WHERE provider = 'password' AND LOWER(TRIM(account_identifier)) = $1
	`, normalized)
	if err != nil {
		return nil, err
	}
	defer credRows.Close()

	var credentials []credentialInfo
	for credRows.Next() {
		var c credentialInfo
		if err := credRows.Scan(&c.ID, &c.UserID, &c.CreatedAt); err != nil {
			return nil, err
		}
		credentials = append(credentials, c)
	}
	if err := credRows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(matched))
	var keepEmail string
	for _, u := range matched {
		summary, err := s.userSummary(ctx, u.id, u.email, u.createdAt)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	plan := buildReconcilePlan(normalized, summaries, credentials, req.KeepUserID, req.AllowDeleteWithData)
	plan.DryRun = req.DryRun == nil || *req.DryRun
	for _, u := range matched {
		if u.id == plan.KeepUserID {
			keepEmail = u.email
		}
	}

	if plan.DryRun {
		return plan, nil
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if keepEmail != normalized {
			if _, err := tx.ExecContext(ctx, `
				UPDATE users SET email = $1, updated_at = $2 WHERE id = $3
			`, normalized, time.Now(), plan.KeepUserID); err != nil {
				return err
			}
		}

		if plan.PrimaryCredentialID != "" {
			if _, err := tx.ExecContext(ctx, `
				UPDATE credentials SET user_id = $1, account_identifier = $2 WHERE id = $3
			`, plan.KeepUserID, normalized, plan.PrimaryCredentialID); err != nil {
				return err
			}
		}

		for _, credID := range plan.CredentialsToDelete {
			if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, credID); err != nil {
				return err
			}
		}

		for _, userID := range plan.UsersToDelete {
			if err := deleteUserCascade(ctx, tx, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🧹 Reconciled %s: kept %s, deleted %d user(s)", normalized, plan.KeepUserID, len(plan.UsersToDelete))
	plan.DeletedUserIDs = plan.UsersToDelete
	return plan, nil
}

// deleteUserCascade removes a user and everything hanging off them.
func deleteUserCascade(ctx context.Context, tx *sql.Tx, userID string) error {
	statements := []string{
		`DELETE FROM allocations a USING budget_months bm WHERE a.budget_month_id = bm.id AND bm.user_id = $1`,
		`DELETE FROM budget_months WHERE user_id = $1`,
		`DELETE FROM categories WHERE user_id = $1`,
		`DELETE FROM credentials WHERE user_id = $1`,
		`DELETE FROM refresh_tokens rt USING sessions s WHERE rt.session_id = s.id AND s.user_id = $1`,
		`DELETE FROM sessions WHERE user_id = $1`,
		`DELETE FROM password_resets WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return err
		}
	}
	return nil
}
