package models

import "time"

// UserSummary describes one account matched during an email
// reconciliation sweep.
type UserSummary struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	BudgetMonths int       `json:"budget_months"`
	Categories   int       `json:"categories"`
	Allocations  int       `json:"allocations"`
	Credentials  int       `json:"credentials"`
	Sessions     int       `json:"sessions"`
	CreatedAt    time.Time `json:"created_at"`
	HasData      bool      `json:"has_data"`
}

type ReconcileEmailRequest struct {
	Email               string `json:"email" binding:"required"`
	DryRun              *bool  `json:"dry_run,omitempty"`
	AllowDeleteWithData bool   `json:"allow_delete_with_data,omitempty"`
	KeepUserID          string `json:"keep_user_id,omitempty"`
}

// ReconcilePlan is the computed merge plan. In dry-run mode it is
// returned without any mutation; in apply mode DeletedUserIDs reports
// what was actually removed.
type ReconcilePlan struct {
	NormalizedEmail     string        `json:"normalized_email"`
	Message             string        `json:"message,omitempty"`
	KeepUserID          string        `json:"keep_user_id,omitempty"`
	PrimaryCredentialID string        `json:"primary_credential_id,omitempty"`
	Users               []UserSummary `json:"users"`
	DuplicateUserIDs    []string      `json:"duplicate_user_ids"`
	UsersToDelete       []string      `json:"users_to_delete"`
	SkippedUserIDs      []string      `json:"skipped_user_ids"`
	CredentialsToDelete []string      `json:"credentials_to_delete"`
	DryRun              bool          `json:"dry_run"`
	DeletedUserIDs      []string      `json:"deleted_user_ids,omitempty"`
}
