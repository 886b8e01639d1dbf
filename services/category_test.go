package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerise/ledgerise-api/models"
)

func TestValidateCategoryName(t *testing.T) {
	name, err := validateCategoryName("  Groceries  ")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", name, "name is trimmed")

	_, err = validateCategoryName("   ")
	assert.Error(t, err, "blank name rejected")

	_, err = validateCategoryName(strings.Repeat("x", 51))
	assert.Error(t, err, "over 50 characters rejected")

	name, err = validateCategoryName(strings.Repeat("x", 50))
	require.NoError(t, err)
	assert.Len(t, name, 50)
}

func TestValidateCategoryNameCountsRunes(t *testing.T) {
	// 50 two-byte runes is exactly at the limit
	name, err := validateCategoryName(strings.Repeat("é", 50))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), name)

	_, err = validateCategoryName(strings.Repeat("é", 51))
	assert.Error(t, err)
}

func TestValidateHexColor(t *testing.T) {
	assert.NoError(t, validateHexColor("#6366f1"))
	assert.NoError(t, validateHexColor("#ABCDEF"))

	assert.Error(t, validateHexColor("6366f1"), "missing hash")
	assert.Error(t, validateHexColor("#fff"), "short form not accepted")
	assert.Error(t, validateHexColor("#6366f1aa"), "too long")
	assert.Error(t, validateHexColor("#gggggg"), "non-hex digits")
	assert.Error(t, validateHexColor(""))
}

func TestDefaultCategorySeedSet(t *testing.T) {
	require.Len(t, models.DefaultCategories, 7)

	first := models.DefaultCategories[0]
	assert.Equal(t, "Savings", first.Name)
	assert.True(t, first.IsSavings)
	assert.Equal(t, 0, first.SortOrder)

	seen := map[string]bool{}
	for i, def := range models.DefaultCategories {
		assert.Equal(t, i, def.SortOrder, "sort order follows declaration order")
		assert.False(t, seen[def.Name], "names are unique")
		seen[def.Name] = true
		assert.NoError(t, validateHexColor(def.Color))
		if i > 0 {
			assert.False(t, def.IsSavings, "only the first default is the savings category")
		}
	}
}
