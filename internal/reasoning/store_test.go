package reasoning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/reasoning"
)

func TestNewStore_SeedsEveryCategory(t *testing.T) {
	s := reasoning.NewStore()
	for _, cat := range model.AllCategories {
		p := s.Select(cat)
		assert.NotEmpty(t, p.Pattern, "category %s has no pattern", cat)
		assert.NotEmpty(t, p.Rules)
	}
}

func TestSelect_HighestPriorityWins(t *testing.T) {
	s := reasoning.NewStore()
	base := s.Select(model.CategoryKYC)

	improved, err := s.Create(model.ReasoningPattern{
		Category: model.CategoryKYC,
		Pattern:  base.Pattern + "_improved",
		Priority: base.Priority + 1,
		Rules:    []string{"extra rule"},
	})
	require.NoError(t, err)

	assert.Equal(t, improved.ID, s.Select(model.CategoryKYC).ID)
}

func TestSelect_UnknownCategoryFallsBackToGeneral(t *testing.T) {
	s := reasoning.NewStore()
	p := s.Select(model.Category("nonexistent"))
	assert.Equal(t, model.CategoryGeneral, p.Category)
}

func TestCreate_RequiresName(t *testing.T) {
	s := reasoning.NewStore()
	_, err := s.Create(model.ReasoningPattern{Category: model.CategoryKYC})
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	s := reasoning.NewStore()
	created, err := s.Create(model.ReasoningPattern{Category: model.CategoryKYC, Pattern: "x", Priority: 1})
	require.NoError(t, err)

	updated, ok := s.Update(created.ID, model.ReasoningPattern{Category: model.CategoryKYC, Pattern: "y", Priority: 2})
	require.True(t, ok)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "y", updated.Pattern)

	_, ok = s.Update("missing", model.ReasoningPattern{Pattern: "z"})
	assert.False(t, ok)
}

func TestGetByCategory_SortedByPriority(t *testing.T) {
	s := reasoning.NewStore()
	_, err := s.Create(model.ReasoningPattern{Category: model.CategoryGeneral, Pattern: "richer", Priority: 5})
	require.NoError(t, err)

	ps := s.GetByCategory(model.CategoryGeneral)
	require.GreaterOrEqual(t, len(ps), 2)
	for i := 1; i < len(ps); i++ {
		assert.GreaterOrEqual(t, ps[i-1].Priority, ps[i].Priority)
	}
}
