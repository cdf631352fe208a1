// Package reasoning holds the response-shaping rule sets the composer
// selects per category. The hot path only reads; the feedback learner may
// add improved patterns.
package reasoning

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tokenforge/sage/internal/model"
)

// Store manages reasoning patterns in memory.
type Store struct {
	mu       sync.RWMutex
	patterns map[string]model.ReasoningPattern
}

// NewStore creates a Store seeded with the built-in default patterns.
func NewStore() *Store {
	s := &Store{patterns: make(map[string]model.ReasoningPattern)}
	for _, p := range defaultPatterns {
		p.ID = uuid.NewString()
		s.patterns[p.ID] = p
	}
	return s
}

// GetByCategory returns patterns for a category sorted by descending
// priority. An empty category returns every pattern.
func (s *Store) GetByCategory(cat model.Category) []model.ReasoningPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ReasoningPattern
	for _, p := range s.patterns {
		if cat == "" || p.Category == cat {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// Select returns the highest-priority pattern for a category, or the
// general default when the category has none.
func (s *Store) Select(cat model.Category) model.ReasoningPattern {
	if ps := s.GetByCategory(cat); len(ps) > 0 {
		return ps[0]
	}
	if ps := s.GetByCategory(model.CategoryGeneral); len(ps) > 0 {
		return ps[0]
	}
	return model.ReasoningPattern{Pattern: "plain", Category: model.CategoryGeneral}
}

// Create stores a new pattern, assigning its ID.
func (s *Store) Create(p model.ReasoningPattern) (model.ReasoningPattern, error) {
	if p.Pattern == "" {
		return model.ReasoningPattern{}, fmt.Errorf("reasoning pattern needs a name")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.patterns[p.ID]; exists {
		return model.ReasoningPattern{}, fmt.Errorf("reasoning pattern %q already exists", p.ID)
	}
	s.patterns[p.ID] = p
	return p, nil
}

// Update replaces an existing pattern whole. Returns false for unknown IDs.
func (s *Store) Update(id string, p model.ReasoningPattern) (model.ReasoningPattern, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patterns[id]; !ok {
		return model.ReasoningPattern{}, false
	}
	p.ID = id
	s.patterns[id] = p
	return p, true
}

// defaultPatterns ship with the engine so every category composes sensibly
// before any learning has happened.
var defaultPatterns = []model.ReasoningPattern{
	{
		Category: model.CategoryKYC,
		Pattern:  "kyc_guidance",
		Priority: 10,
		Rules: []string{
			"State the required document types explicitly.",
			"Give the steps in order.",
			"Close by pointing at the verification page.",
		},
		Examples: []model.PatternExample{
			{Question: "How do I verify my account?", Answer: "Upload a passport or ID card from your verification page, then wait for review."},
		},
	},
	{
		Category: model.CategoryMarketplace,
		Pattern:  "marketplace_recommend",
		Priority: 10,
		Rules: []string{
			"Lead with the most relevant category or item.",
			"Mention how to browse or search.",
		},
	},
	{
		Category: model.CategoryTokenPurchase,
		Pattern:  "token_purchase",
		Priority: 10,
		Rules: []string{
			"State the current purchase mechanism before anything else.",
			"Mention the wallet balance effect.",
		},
	},
	{
		Category: model.CategoryPlatformContext,
		Pattern:  "platform_status",
		Priority: 10,
		Rules: []string{
			"Answer with concrete numbers when knowledge provides them.",
			"Point at the dashboard for live values.",
		},
	},
	{
		Category: model.CategoryRealWorld,
		Pattern:  "real_world_explain",
		Priority: 10,
		Rules: []string{
			"Define the subject in the first sentence.",
			"Add one level of supporting detail, no more.",
		},
		Examples: []model.PatternExample{
			{Input: "What is photosynthesis?", Reasoning: "Definition first, then mechanism.", Output: "Photosynthesis is the process plants use to turn light into chemical energy..."},
		},
	},
	{
		Category: model.CategoryGeneral,
		Pattern:  "plain",
		Priority: 1,
		Rules: []string{
			"Answer directly and briefly.",
		},
	},
}
