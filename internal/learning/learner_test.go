package learning_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/knowledge"
	"github.com/tokenforge/sage/internal/learning"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/reasoning"
	"github.com/tokenforge/sage/internal/tasks"
)

// analyzeService scripts AnalyzeFeedback for gap-filling tests.
type analyzeService struct {
	analysis *augment.FeedbackAnalysis
	err      error
}

func (s *analyzeService) Answer(ctx context.Context, query, knowledgeContext string) (string, error) {
	return "", nil
}

func (s *analyzeService) AnalyzeFeedback(ctx context.Context, event model.FeedbackEvent) (*augment.FeedbackAnalysis, error) {
	return s.analysis, s.err
}

func (s *analyzeService) IsAvailable() bool { return true }

type fixture struct {
	events   *learning.EventStore
	store    *knowledge.Store
	tasks    *tasks.Store
	daily    *metrics.Daily
	patterns *reasoning.Store
	learner  *learning.Learner
}

func newFixture(t *testing.T, svc augment.Service) *fixture {
	t.Helper()
	events, err := learning.NewEventStore("")
	require.NoError(t, err)
	store, err := knowledge.NewStore("")
	require.NoError(t, err)
	taskStore, err := tasks.NewStore("")
	require.NoError(t, err)

	daily, err := metrics.NewDaily("")
	require.NoError(t, err)
	sink := tasks.NewSink(taskStore, config.Sinks{})
	patterns := reasoning.NewStore()
	learner := learning.New(events, store, patterns, svc, sink, daily, nil, config.DefaultTunables())
	return &fixture{events: events, store: store, tasks: taskStore, daily: daily, patterns: patterns, learner: learner}
}

func (f *fixture) addEvent(t *testing.T, e model.FeedbackEvent) model.FeedbackEvent {
	t.Helper()
	added, err := f.events.Add(e)
	require.NoError(t, err)
	return added
}

func TestProcess_PositiveReinforcesMatchedEntries(t *testing.T) {
	f := newFixture(t, nil)
	entry, err := f.store.Create(model.KnowledgeEntry{Topic: "Mining", Information: "Mining earns tokens.", Confidence: 95})
	require.NoError(t, err)

	event := f.addEvent(t, model.FeedbackEvent{
		Question: "how does mining work", Answer: "Mining earns tokens.",
		Rating: 5, Topics: []string{"Mining"},
	})
	f.learner.Process(context.Background(), event)

	got, ok := f.store.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, 97, got.Confidence)

	day := f.daily.Day(metrics.DayOf(event.CreatedAt))
	assert.Equal(t, int64(1), day.PositiveRatings)
	assert.Equal(t, int64(1), day.EntriesUpdated)
}

func TestProcess_PositiveBoostCapsAtHundred(t *testing.T) {
	f := newFixture(t, nil)
	entry, err := f.store.Create(model.KnowledgeEntry{Topic: "Mining", Information: "x", Confidence: 99})
	require.NoError(t, err)

	event := f.addEvent(t, model.FeedbackEvent{Question: "mining", Answer: "a", Rating: 4, Topics: []string{"Mining"}})
	f.learner.Process(context.Background(), event)

	got, _ := f.store.Get(entry.ID)
	assert.Equal(t, 100, got.Confidence)
}

func TestProcess_NegativeReasoningPathWeightedPenalty(t *testing.T) {
	f := newFixture(t, nil)
	// The entry covers every significant question word, so coverage is high:
	// this is a phrasing failure, not a knowledge gap.
	entry, err := f.store.Create(model.KnowledgeEntry{
		Topic: "Mining Speed", Information: "Mining speed depends on account level.", Confidence: 90,
	})
	require.NoError(t, err)

	event := f.addEvent(t, model.FeedbackEvent{
		Question: "what is my mining speed", Answer: "It varies.",
		Rating: 2, Topics: []string{"Mining Speed"},
	})
	f.learner.Process(context.Background(), event)

	got, _ := f.store.Get(entry.ID)
	assert.Equal(t, 83, got.Confidence, "full word coverage takes the -7 penalty")

	day := f.daily.Day(metrics.DayOf(event.CreatedAt))
	assert.Equal(t, int64(1), day.NegativeRatings)
	assert.Equal(t, int64(0), day.GapsIdentified)
}

func TestProcess_NegativePenaltyRespectsFloor(t *testing.T) {
	f := newFixture(t, nil)
	entry, err := f.store.Create(model.KnowledgeEntry{
		Topic: "Mining Speed", Information: "Mining speed depends on account level.", Confidence: 52,
	})
	require.NoError(t, err)

	event := f.addEvent(t, model.FeedbackEvent{
		Question: "what is my mining speed", Answer: "It varies.",
		Rating: 1, Topics: []string{"Mining Speed"},
	})
	f.learner.Process(context.Background(), event)

	got, _ := f.store.Get(entry.ID)
	assert.Equal(t, 50, got.Confidence)
}

func TestProcess_GapPathWithoutServiceSchedulesTask(t *testing.T) {
	f := newFixture(t, nil)

	event := f.addEvent(t, model.FeedbackEvent{
		Question: "what is the staking programme", Answer: "No idea.",
		Rating: 1, Topics: []string{"Staking"},
	})
	f.learner.Process(context.Background(), event)

	pending := f.tasks.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, model.TaskKnowledgeGap, pending[0].TaskType)
	assert.Equal(t, 70, pending[0].Priority)
	assert.Equal(t, "what is the staking programme", pending[0].Data["question"])

	day := f.daily.Day(metrics.DayOf(event.CreatedAt))
	assert.Equal(t, int64(1), day.GapsIdentified)
}

func TestProcess_GapPathFillsFromAnalysis(t *testing.T) {
	svc := &analyzeService{analysis: &augment.FeedbackAnalysis{
		NewKnowledge: &model.KnowledgeEntry{
			Topic: "Staking", Category: model.KnowledgePlatform,
			Information: "Staking locks tokens for yield.", Confidence: 40,
		},
	}}
	f := newFixture(t, svc)

	event := f.addEvent(t, model.FeedbackEvent{
		Question: "what is the staking programme", Answer: "No idea.",
		Rating: 1, Topics: []string{"Staking"},
	})
	f.learner.Process(context.Background(), event)

	created := f.store.GetByTopic("Staking")
	require.Len(t, created, 1)
	assert.Equal(t, model.KnowledgeSourceFeedback, created[0].Source)
	// Confidence is clamped into the minted band regardless of what the
	// analysis claimed.
	assert.Equal(t, 70, created[0].Confidence)

	pending := f.tasks.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, model.TaskReviewKnowledge, pending[0].TaskType)
	assert.Equal(t, 50, pending[0].Priority)
}

func TestProcess_RepeatedDefectsFoldIntoOneImprovedPattern(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.store.Create(model.KnowledgeEntry{
		Topic: "Mining Speed", Information: "Mining speed depends on account level.", Confidence: 90,
	})
	require.NoError(t, err)

	negative := func(comment string) model.FeedbackEvent {
		return model.FeedbackEvent{
			Question: "what is my mining speed", Answer: "It varies.",
			Rating: 2, Topics: []string{"Mining Speed"}, Comment: comment,
		}
	}
	f.learner.Process(context.Background(), f.addEvent(t, negative("")))
	f.learner.Process(context.Background(), f.addEvent(t, negative("")))
	f.learner.Process(context.Background(), f.addEvent(t, negative("this is wrong")))

	var improved []model.ReasoningPattern
	for _, p := range f.patterns.GetByCategory(model.CategoryPlatformContext) {
		if strings.HasSuffix(p.Pattern, "_improved") {
			improved = append(improved, p)
		}
	}
	require.Len(t, improved, 1, "repeated defects must not stack patterns")
	assert.Equal(t, "platform_status_improved", improved[0].Pattern)
	assert.Equal(t, 11, improved[0].Priority, "priority stays one above the base")
	assert.Contains(t, improved[0].Rules, "Expand the answer with at least one supporting detail.")
	assert.Contains(t, improved[0].Rules, "Verify the central fact against knowledge before asserting it.")

	// Only the events that taught something new scheduled review work.
	var reviews int
	for _, task := range f.tasks.Pending() {
		if task.TaskType == model.TaskImproveReasoning {
			reviews++
		}
	}
	assert.Equal(t, 2, reviews)
}

func TestProcess_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	entry, err := f.store.Create(model.KnowledgeEntry{Topic: "Mining", Information: "x", Confidence: 90})
	require.NoError(t, err)

	event := f.addEvent(t, model.FeedbackEvent{Question: "mining", Answer: "a", Rating: 5, Topics: []string{"Mining"}})
	f.learner.Process(context.Background(), event)
	f.learner.Process(context.Background(), event)
	f.learner.Process(context.Background(), event)

	got, _ := f.store.Get(entry.ID)
	assert.Equal(t, 92, got.Confidence, "reprocessing must not re-apply the boost")
}

func TestProcess_DetectsMisclassification(t *testing.T) {
	f := newFixture(t, nil)

	// Answered under platform topics, but the question carries only
	// real-world signals.
	event := f.addEvent(t, model.FeedbackEvent{
		Question: "what is the boiling point of water", Answer: "See your dashboard.",
		Rating: 4, Topics: []string{"Mining"},
	})
	f.learner.Process(context.Background(), event)

	pending := f.tasks.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, model.TaskReviewClassification, pending[0].TaskType)
	assert.Equal(t, 60, pending[0].Priority)
	assert.Equal(t, "platform_as_realworld", pending[0].Data["flag"])
}

func TestProcessBatch_HonorsBatchSize(t *testing.T) {
	tun := config.DefaultTunables()
	tun.BatchSize = 2

	events, err := learning.NewEventStore("")
	require.NoError(t, err)
	store, err := knowledge.NewStore("")
	require.NoError(t, err)
	taskStore, err := tasks.NewStore("")
	require.NoError(t, err)
	daily, err := metrics.NewDaily("")
	require.NoError(t, err)
	learner := learning.New(events, store, reasoning.NewStore(), nil,
		tasks.NewSink(taskStore, config.Sinks{}), daily, nil, tun)

	for i := 0; i < 5; i++ {
		_, err := events.Add(model.FeedbackEvent{Question: "q", Answer: "a", Rating: 5})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, learner.ProcessBatch(context.Background()))
	assert.Equal(t, 2, learner.ProcessBatch(context.Background()))
	assert.Equal(t, 1, learner.ProcessBatch(context.Background()))
	assert.Equal(t, 0, learner.ProcessBatch(context.Background()))
}
