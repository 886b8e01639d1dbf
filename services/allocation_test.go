package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerise/ledgerise-api/models"
)

func TestCopyablePairsExcludesSavings(t *testing.T) {
	source := []models.Allocation{
		alloc("c-food", 100, cat("c-food", "Transport & Food", "#f59e0b", false)),
		alloc("c-fun", 50, cat("c-fun", "Fun", "#06b6d4", false)),
		alloc("c-sav", 999, cat("c-sav", "Savings", "#6366f1", true)),
	}

	pairs := copyablePairs(source)

	require.Len(t, pairs, 2, "savings row never copies")
	assert.Equal(t, allocationPair{categoryID: "c-food", amount: 100}, pairs[0])
	assert.Equal(t, allocationPair{categoryID: "c-fun", amount: 50}, pairs[1])
}

func TestCopyablePairsEmptySource(t *testing.T) {
	assert.Empty(t, copyablePairs(nil))
	assert.Empty(t, copyablePairs([]models.Allocation{
		alloc("c-sav", 500, cat("c-sav", "Savings", "#6366f1", true)),
	}), "a savings-only source copies nothing")
}

func TestCopyablePairsDeterministic(t *testing.T) {
	// Repeating a copy upserts the identical set, so the operation is
	// idempotent on the target.
	source := []models.Allocation{
		alloc("c-food", 100, cat("c-food", "Transport & Food", "#f59e0b", false)),
		alloc("c-fun", 50, cat("c-fun", "Fun", "#06b6d4", false)),
	}

	assert.Equal(t, copyablePairs(source), copyablePairs(source))
}

func TestAllocationWriteKind(t *testing.T) {
	clearRow, err := allocationWriteKind(0)
	require.NoError(t, err)
	assert.True(t, clearRow, "amount zero clears the row")

	clearRow, err = allocationWriteKind(2500)
	require.NoError(t, err)
	assert.False(t, clearRow, "positive amount writes the row")

	_, err = allocationWriteKind(-1)
	require.Error(t, err)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
