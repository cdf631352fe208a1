package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/scoring"
)

func newEngine() *scoring.Engine {
	return scoring.NewEngine(config.DefaultTunables())
}

func entry(topic, info string, confidence int) model.KnowledgeEntry {
	return model.KnowledgeEntry{
		ID:          topic,
		Topic:       topic,
		Category:    model.KnowledgePlatform,
		Information: info,
		Confidence:  confidence,
	}
}

func TestScore_RelevantBeatsIrrelevant(t *testing.T) {
	g := newEngine()
	query := "how fast is my mining speed"

	relevant := entry("mining speed", "Your mining speed depends on your account level and uptime.", 80)
	irrelevant := entry("shipping policy", "Orders ship within five business days.", 80)

	assert.Greater(t, g.Score(query, relevant), g.Score(query, irrelevant))
	assert.Zero(t, g.Score(query, irrelevant))
}

func TestScore_ConfidenceDampensButNeverZeroes(t *testing.T) {
	g := newEngine()
	query := "mining speed"

	high := entry("mining speed", "Mining speed scales with level.", 100)
	low := entry("mining speed", "Mining speed scales with level.", 0)

	hs := g.Score(query, high)
	ls := g.Score(query, low)
	assert.Greater(t, hs, ls)
	assert.Greater(t, ls, 0.0, "zero confidence halves the score, it does not erase it")
	assert.InDelta(t, hs/1.5, ls/0.5, 1e-9)
}

func TestRank_DiscardsAtOrBelowMinScore(t *testing.T) {
	g := newEngine()
	entries := []model.KnowledgeEntry{
		entry("mining speed", "Mining speed scales with account level.", 90),
		entry("recipe book", "Preheat the oven to 180 degrees.", 90),
	}

	matches := g.Rank("what is my mining speed", entries)
	require.Len(t, matches, 1)
	assert.Equal(t, "mining speed", matches[0].Entry.Topic)
}

func TestRank_SortedDescending(t *testing.T) {
	g := newEngine()
	entries := []model.KnowledgeEntry{
		entry("mining", "Mining earns tokens.", 60),
		entry("mining speed", "Your mining speed depends on your account level. Mining speed rises with uptime.", 90),
		entry("mining rewards", "Mining rewards accumulate hourly.", 70),
	}

	matches := g.Rank("what is my mining speed", entries)
	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	assert.Equal(t, "mining speed", matches[0].Entry.Topic)
}

func TestRank_CapsResults(t *testing.T) {
	tun := config.DefaultTunables()
	tun.MaxResults = 2
	g := scoring.NewEngine(tun)

	entries := []model.KnowledgeEntry{
		entry("mining speed", "Mining speed facts.", 90),
		entry("mining rewards", "Mining rewards facts.", 85),
		entry("mining level", "Mining level facts.", 80),
	}
	matches := g.Rank("tell me about mining", entries)
	assert.LessOrEqual(t, len(matches), 2)
}

func TestRank_EmptyInput(t *testing.T) {
	g := newEngine()
	assert.Empty(t, g.Rank("anything", nil))
}

func TestDetectQuestionType(t *testing.T) {
	cases := map[string]scoring.QuestionType{
		"how do i verify my account":           scoring.QuestionHow,
		"why is the sky blue":                  scoring.QuestionWhy,
		"what is a token":                      scoring.QuestionWhat,
		"difference between coin and token":    scoring.QuestionDifference,
		"compare mining and staking":           scoring.QuestionDifference,
		"list the marketplace categories":      scoring.QuestionList,
		"when did the platform launch":         scoring.QuestionWhen,
		"who invented the telephone":           scoring.QuestionWho,
		"mining speed please":                  scoring.QuestionUnknown,
		"give me some examples of marketplace": scoring.QuestionList,
	}
	for q, want := range cases {
		assert.Equal(t, want, scoring.DetectQuestionType(q), "query: %s", q)
	}
}
