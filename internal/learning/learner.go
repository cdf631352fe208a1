package learning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/classify"
	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/reasoning"
	"github.com/tokenforge/sage/internal/tasks"
)

// KnowledgeStore is the slice of the knowledge store the learner mutates.
type KnowledgeStore interface {
	GetByTopic(topic string) []model.KnowledgeEntry
	Create(e model.KnowledgeEntry) (model.KnowledgeEntry, error)
	AdjustConfidence(id string, delta int) (int, bool)
	AdjustConfidenceFloor(id string, delta int, floor int) (int, bool)
}

// Learner runs the feedback loop: every event takes either the positive
// path (confidence reinforcement) or the negative path (gap detection or
// reasoning-issue correction), then is marked processed exactly once.
type Learner struct {
	events   *EventStore
	store    KnowledgeStore
	patterns *reasoning.Store
	svc      augment.Service
	sink     *tasks.Sink
	classify *classify.Classifier
	daily    *metrics.Daily
	prom     *metrics.Metrics
	tun      config.Tunables
}

// New creates a Learner. svc may be nil; gap filling then always degrades
// to a manual-review task.
func New(events *EventStore, store KnowledgeStore, patterns *reasoning.Store, svc augment.Service, sink *tasks.Sink, daily *metrics.Daily, prom *metrics.Metrics, tun config.Tunables) *Learner {
	return &Learner{
		events:   events,
		store:    store,
		patterns: patterns,
		svc:      svc,
		sink:     sink,
		classify: classify.New(),
		daily:    daily,
		prom:     prom,
		tun:      tun,
	}
}

// ProcessBatch processes up to the configured batch size of unprocessed
// events and returns how many were handled. A failure inside one event's
// learning degrades to a review task; it never fails the batch.
func (l *Learner) ProcessBatch(ctx context.Context) int {
	start := time.Now()
	batch := l.events.Unprocessed(l.tun.BatchSize)
	for _, e := range batch {
		l.Process(ctx, e)
	}
	if l.prom != nil {
		l.prom.LearningBatchSecs.Observe(time.Since(start).Seconds())
	}
	return len(batch)
}

// Process runs the learning state machine for one event. Reprocessing an
// already-processed event is a no-op.
func (l *Learner) Process(ctx context.Context, event model.FeedbackEvent) {
	if current, ok := l.events.Get(event.ID); !ok || current.Processed {
		return
	}

	day := metrics.DayOf(event.CreatedAt)
	l.daily.AddRating(day, event.Positive())

	matched := l.matchedEntries(event)

	if event.Positive() {
		l.reinforce(event, matched, day)
	} else {
		score := l.gapScore(event, matched)
		if score < l.tun.GapThreshold {
			l.fillGap(ctx, event, day)
		} else {
			l.correctReasoning(event, matched, day)
		}
	}

	l.detectMisclassification(ctx, event)
	l.events.MarkProcessed(event.ID)
}

// matchedEntries unions the entries stored under the event's topic tags.
func (l *Learner) matchedEntries(event model.FeedbackEvent) []model.KnowledgeEntry {
	seen := make(map[string]bool)
	var out []model.KnowledgeEntry
	for _, topic := range event.Topics {
		for _, e := range l.store.GetByTopic(topic) {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out
}

// reinforce is the positive path: every matched entry gains the configured
// boost, capped at 100 by the store.
func (l *Learner) reinforce(event model.FeedbackEvent, matched []model.KnowledgeEntry, day string) {
	for _, e := range matched {
		if _, ok := l.store.AdjustConfidence(e.ID, l.tun.PositiveBoost); ok {
			l.daily.AddEntryUpdated(day)
			if l.prom != nil {
				l.prom.EntriesUpdated.Inc()
			}
		}
	}
	if l.prom != nil {
		l.prom.FeedbackTotal.WithLabelValues("positive").Inc()
	}
}

// gapScore estimates how well existing knowledge covers the question:
// 0.6·wordCoverage + 0.2·min(1, entryCount/5) + 0.2·avgConfidence/100.
// Below the threshold the knowledge itself is the problem, not its phrasing.
func (l *Learner) gapScore(event model.FeedbackEvent, matched []model.KnowledgeEntry) float64 {
	words := classify.SignificantWords(event.Question)
	coverage := 0.0
	if len(words) > 0 && len(matched) > 0 {
		covered := 0
		for _, w := range words {
			for _, e := range matched {
				if strings.Contains(strings.ToLower(e.SearchText()), w) {
					covered++
					break
				}
			}
		}
		coverage = float64(covered) / float64(len(words))
	}

	countFactor := float64(len(matched)) / 5
	if countFactor > 1 {
		countFactor = 1
	}

	avgConfidence := 0.0
	if len(matched) > 0 {
		var sum int
		for _, e := range matched {
			sum += e.Confidence
		}
		avgConfidence = float64(sum) / float64(len(matched))
	}

	return 0.6*coverage + 0.2*countFactor + 0.2*avgConfidence/100
}

// fillGap attempts augmentation-derived knowledge creation; on failure it
// schedules a manual knowledge_gap task carrying the raw gap data.
func (l *Learner) fillGap(ctx context.Context, event model.FeedbackEvent, day string) {
	l.daily.AddGap(day)
	if l.prom != nil {
		l.prom.GapsTotal.Inc()
		l.prom.FeedbackTotal.WithLabelValues("gap").Inc()
	}

	if l.svc != nil && l.svc.IsAvailable() {
		analysis, err := l.svc.AnalyzeFeedback(ctx, event)
		if err == nil && analysis != nil && analysis.NewKnowledge != nil {
			entry := *analysis.NewKnowledge
			entry.Source = model.KnowledgeSourceFeedback
			entry.Confidence = clampMinted(entry.Confidence, l.tun)
			created, cerr := l.store.Create(entry)
			if cerr == nil {
				l.daily.AddEntryCreated(day)
				if l.prom != nil {
					l.prom.EntriesCreated.Inc()
				}
				l.sink.Store.Create(model.SystemTask{
					TaskType: model.TaskReviewKnowledge,
					Priority: 50,
					Data: map[string]any{
						"entry_id": created.ID,
						"topic":    created.Topic,
						"question": event.Question,
					},
				})
				slog.Info("learning: gap filled from augmentation", "topic", created.Topic)
				return
			}
			slog.Warn("learning: failed to store gap knowledge", "err", cerr)
		} else if err != nil {
			slog.Warn("learning: feedback analysis failed", "err", err)
		}
	}

	l.sink.Store.Create(model.SystemTask{
		TaskType: model.TaskKnowledgeGap,
		Priority: 70,
		Data: map[string]any{
			"question": event.Question,
			"answer":   event.Answer,
			"rating":   event.Rating,
			"topics":   strings.Join(event.Topics, ","),
			"comment":  event.Comment,
		},
	})
}

// correctReasoning is the negative path when knowledge coverage looked
// adequate: the phrasing failed, so matched entries lose confidence by a
// relevance-weighted amount (never below the floor) and a defect-specific
// improved pattern may be created.
func (l *Learner) correctReasoning(event model.FeedbackEvent, matched []model.KnowledgeEntry, day string) {
	if l.prom != nil {
		l.prom.FeedbackTotal.WithLabelValues("reasoning").Inc()
	}

	words := classify.SignificantWords(event.Question)
	for _, e := range matched {
		relevance := entryRelevance(words, e)
		delta := -3
		switch {
		case relevance > 0.7:
			delta = -7
		case relevance > 0.4:
			delta = -5
		}
		if _, ok := l.store.AdjustConfidenceFloor(e.ID, delta, l.tun.NegativeFloor); ok {
			l.daily.AddEntryUpdated(day)
			if l.prom != nil {
				l.prom.EntriesUpdated.Inc()
			}
		}
	}

	defects := detectDefects(event)
	if len(defects) == 0 {
		return
	}

	cat := l.classify.Classify(event.Question, nil)
	if l.upsertImprovedPattern(cat, defectRules(defects)) {
		l.sink.Store.Create(model.SystemTask{
			TaskType: model.TaskImproveReasoning,
			Priority: 40,
			Data: map[string]any{
				"category": string(cat),
				"defects":  strings.Join(defects, ","),
				"question": event.Question,
			},
		})
	}
}

// upsertImprovedPattern folds defect rules into the category's single
// improved pattern, creating it one priority above the base the first time.
// Repeated negative feedback grows the rule set, never the pattern count or
// its priority. Returns whether any rule was new.
func (l *Learner) upsertImprovedPattern(cat model.Category, rules []string) bool {
	base := l.patterns.Select(cat)
	name := strings.TrimSuffix(base.Pattern, "_improved") + "_improved"

	for _, p := range l.patterns.GetByCategory(cat) {
		if p.Pattern != name {
			continue
		}
		merged, changed := appendMissing(p.Rules, rules)
		if !changed {
			return false
		}
		p.Rules = merged
		_, ok := l.patterns.Update(p.ID, p)
		return ok
	}

	merged, _ := appendMissing(append([]string{}, base.Rules...), rules)
	improved := model.ReasoningPattern{
		Category: cat,
		Pattern:  name,
		Priority: base.Priority + 1,
		Rules:    merged,
	}
	_, err := l.patterns.Create(improved)
	return err == nil
}

// appendMissing appends the rules not already present, reporting whether
// anything was added.
func appendMissing(existing, rules []string) ([]string, bool) {
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r] = true
	}
	changed := false
	for _, r := range rules {
		if seen[r] {
			continue
		}
		seen[r] = true
		existing = append(existing, r)
		changed = true
	}
	return existing, changed
}

// entryRelevance is the fraction of significant question words present in
// the entry's text.
func entryRelevance(words []string, e model.KnowledgeEntry) float64 {
	if len(words) == 0 {
		return 0
	}
	text := strings.ToLower(e.SearchText())
	hits := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// detectMisclassification flags answers whose category signals point the
// other way and emits a review task. It never auto-corrects.
func (l *Learner) detectMisclassification(ctx context.Context, event model.FeedbackEvent) {
	platformTopics := false
	realWorldTopics := false
	for _, t := range event.Topics {
		switch model.TopicCategory(t) {
		case model.CategoryRealWorld:
			realWorldTopics = true
		case model.CategoryGeneral:
		default:
			platformTopics = true
		}
	}

	hasPlatform := classify.HasPlatformSignal(event.Question)
	hasRealWorld := classify.HasRealWorldSignal(event.Question)

	var flag string
	switch {
	case platformTopics && hasRealWorld && !hasPlatform:
		flag = "platform_as_realworld"
	case realWorldTopics && hasPlatform && !hasRealWorld:
		flag = "realworld_as_platform"
	default:
		return
	}

	l.sink.Store.Create(model.SystemTask{
		TaskType: model.TaskReviewClassification,
		Priority: 60,
		Data: map[string]any{
			"flag":     flag,
			"question": event.Question,
			"topics":   strings.Join(event.Topics, ","),
		},
	})
	l.sink.CreateAdminReviewItem(ctx,
		fmt.Sprintf("Possible misclassification: %s", flag),
		fmt.Sprintf("Question %q was answered under topics %v; signals suggest the opposite domain.", event.Question, event.Topics),
		60, time.Now().UTC().Add(72*time.Hour))
}

func clampMinted(c int, tun config.Tunables) int {
	if c < tun.MintedMinConf {
		return tun.MintedMinConf
	}
	if c > tun.MintedMaxConf {
		return tun.MintedMaxConf
	}
	return c
}
