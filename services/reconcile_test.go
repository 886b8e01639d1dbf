package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerise/ledgerise-api/models"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "sia@example.com", normalizeEmail("  Sia@Example.COM  "))
	assert.Equal(t, "", normalizeEmail("   "))
}

func summary(userID string, months, allocations, categories int, createdAt time.Time) models.UserSummary {
	return models.UserSummary{
		UserID:       userID,
		BudgetMonths: months,
		Allocations:  allocations,
		Categories:   categories,
		CreatedAt:    createdAt,
		HasData:      months > 0 || allocations > 0 || categories > 0,
	}
}

func TestPickUserToKeep(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	summaries := []models.UserSummary{
		summary("u-old-empty", 0, 0, 0, base),
		summary("u-rich", 5, 20, 7, base.AddDate(0, 1, 0)),
		summary("u-some", 2, 8, 7, base.AddDate(0, 2, 0)),
	}

	t.Run("preferred user wins when matched", func(t *testing.T) {
		keep := pickUserToKeep(summaries, "u-some")
		assert.Equal(t, "u-some", keep.UserID)
	})

	t.Run("unknown preference falls through to heuristics", func(t *testing.T) {
		keep := pickUserToKeep(summaries, "u-missing")
		assert.Equal(t, "u-rich", keep.UserID)
	})

	t.Run("most budget months wins", func(t *testing.T) {
		keep := pickUserToKeep(summaries, "")
		assert.Equal(t, "u-rich", keep.UserID)
	})

	t.Run("ties break on allocations then categories then age", func(t *testing.T) {
		tied := []models.UserSummary{
			summary("u-b", 2, 5, 3, base.AddDate(0, 1, 0)),
			summary("u-a", 2, 5, 3, base),
		}
		keep := pickUserToKeep(tied, "")
		assert.Equal(t, "u-a", keep.UserID, "earliest created wins a full tie")

		tied[1].Allocations = 6
		keep = pickUserToKeep(tied, "")
		assert.Equal(t, "u-a", keep.UserID, "more allocations wins")
	})
}

func TestPickPrimaryCredential(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	credentials := []credentialInfo{
		{ID: "cr-1", UserID: "u-keep", CreatedAt: base},
		{ID: "cr-2", UserID: "u-keep", CreatedAt: base.AddDate(0, 0, 5)},
		{ID: "cr-3", UserID: "u-other", CreatedAt: base.AddDate(0, 1, 0)},
	}

	primary := pickPrimaryCredential(credentials, "u-keep")
	require.NotNil(t, primary)
	assert.Equal(t, "cr-2", primary.ID, "newest credential of the kept user")

	primary = pickPrimaryCredential(credentials, "u-unmatched")
	require.NotNil(t, primary)
	assert.Equal(t, "cr-3", primary.ID, "falls back to newest overall")

	assert.Nil(t, pickPrimaryCredential(nil, "u-keep"))
}

func TestBuildReconcilePlan(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	summaries := []models.UserSummary{
		summary("u-keep", 3, 10, 7, base),
		summary("u-empty", 0, 0, 0, base.AddDate(0, 1, 0)),
		summary("u-data", 1, 2, 7, base.AddDate(0, 2, 0)),
	}
	credentials := []credentialInfo{
		{ID: "cr-keep", UserID: "u-keep", CreatedAt: base},
		{ID: "cr-dupe", UserID: "u-empty", CreatedAt: base.AddDate(0, 1, 0)},
	}

	t.Run("default protects accounts with data", func(t *testing.T) {
		plan := buildReconcilePlan("sia@example.com", summaries, credentials, "", false)

		assert.Equal(t, "u-keep", plan.KeepUserID)
		assert.Equal(t, "cr-keep", plan.PrimaryCredentialID)
		assert.ElementsMatch(t, []string{"u-empty", "u-data"}, plan.DuplicateUserIDs)
		assert.Equal(t, []string{"u-empty"}, plan.UsersToDelete)
		assert.Equal(t, []string{"u-data"}, plan.SkippedUserIDs)
		assert.Equal(t, []string{"cr-dupe"}, plan.CredentialsToDelete)
	})

	t.Run("allowDeleteWithData removes everything", func(t *testing.T) {
		plan := buildReconcilePlan("sia@example.com", summaries, credentials, "", true)

		assert.ElementsMatch(t, []string{"u-empty", "u-data"}, plan.UsersToDelete)
		assert.Empty(t, plan.SkippedUserIDs)
	})

	t.Run("explicit keep user shifts the partition", func(t *testing.T) {
		plan := buildReconcilePlan("sia@example.com", summaries, credentials, "u-data", true)

		assert.Equal(t, "u-data", plan.KeepUserID)
		assert.ElementsMatch(t, []string{"u-keep", "u-empty"}, plan.UsersToDelete)
		// u-data owns no credential: newest overall becomes primary
		assert.Equal(t, "cr-dupe", plan.PrimaryCredentialID)
		assert.Equal(t, []string{"cr-keep"}, plan.CredentialsToDelete)
	})
}
