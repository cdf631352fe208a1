// Package engine wires the answering pipeline: classify, retrieve, augment
// when local knowledge is weak, compose. Answering is synchronous and
// touches no shared mutable state beyond read access to the stores; the only
// suspension point is the bounded augmentation call.
package engine

import (
	"context"
	"time"

	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/classify"
	"github.com/tokenforge/sage/internal/compose"
	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/knowledge"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/reasoning"
	"github.com/tokenforge/sage/internal/retrieval"
	"github.com/tokenforge/sage/internal/scoring"
	"github.com/tokenforge/sage/internal/users"
)

// Engine answers questions.
type Engine struct {
	classifier *classify.Classifier
	retriever  *retrieval.Retriever
	gateway    *augment.Gateway
	composer   *compose.Composer
	patterns   *reasoning.Store
	store      *knowledge.Store
	directory  users.Directory
	memory     *Memory
	daily      *metrics.Daily
	prom       *metrics.Metrics
	tun        config.Tunables
}

// Options bundles the engine's collaborators.
type Options struct {
	Store     *knowledge.Store
	Patterns  *reasoning.Store
	Gateway   *augment.Gateway
	Directory users.Directory
	Daily     *metrics.Daily
	Prom      *metrics.Metrics
	Tunables  config.Tunables
}

// New builds an Engine from its collaborators.
func New(opts Options) *Engine {
	return &Engine{
		classifier: classify.New(),
		retriever:  retrieval.New(opts.Store, scoring.NewEngine(opts.Tunables), opts.Tunables),
		gateway:    opts.Gateway,
		composer:   compose.New(opts.Patterns),
		patterns:   opts.Patterns,
		store:      opts.Store,
		directory:  opts.Directory,
		memory:     NewMemory(opts.Tunables.MemoryTurns),
		daily:      opts.Daily,
		prom:       opts.Prom,
		tun:        opts.Tunables,
	}
}

// Ask answers one question for one user. It always returns an answer; a
// degraded augmentation path shows up as low confidence, never as an error.
func (e *Engine) Ask(ctx context.Context, userID, question string) model.Answer {
	history := e.memory.Get(userID)
	category := e.classifier.Classify(question, history)
	topics := e.classifier.DeriveTopics(question, category)
	entries := e.retriever.Retrieve(question, topics)

	var user *model.User
	if e.directory != nil {
		if u, ok := e.directory.GetUser(userID); ok {
			user = &u
		}
	}

	var turns []model.Turn
	if history != nil {
		turns = history.RecentTurns(3)
	}

	in := compose.Input{
		Query:    question,
		Category: category,
		Entries:  entries,
		User:     user,
		History:  turns,
	}

	if e.knowledgeIsWeak(entries) {
		pattern := e.patterns.Select(category)
		result := e.gateway.Augment(ctx, question, entries, &pattern, turns)
		in.BaseText = result.Answer
		in.BaseConfidence = result.Confidence
		in.Augmented = !result.Degraded
		if e.prom != nil {
			if result.Degraded {
				e.prom.AugmentationsTotal.WithLabelValues("fallback").Inc()
			} else {
				e.prom.AugmentationsTotal.WithLabelValues("ok").Inc()
			}
		}
		if result.NewKnowledge != nil {
			if _, err := e.store.Create(*result.NewKnowledge); err == nil {
				e.daily.AddEntryCreated(metrics.DayOf(time.Now()))
				if e.prom != nil {
					e.prom.EntriesCreated.Inc()
				}
			}
		}
	}

	answer := e.composer.Compose(in)

	e.memory.Record(userID, model.Turn{
		Question:  question,
		Answer:    answer.Text,
		Topics:    topics,
		Timestamp: time.Now().UTC(),
	})
	e.daily.AddInteraction(metrics.DayOf(time.Now()))
	if e.prom != nil {
		e.prom.QueriesTotal.WithLabelValues(string(category)).Inc()
		e.prom.AnswerConfidence.Observe(answer.Confidence)
	}
	return answer
}

// knowledgeIsWeak reports whether augmentation should run: no local entries,
// or every one of them below the weak-confidence threshold.
func (e *Engine) knowledgeIsWeak(entries []model.KnowledgeEntry) bool {
	if len(entries) == 0 {
		return true
	}
	for _, entry := range entries {
		if entry.Confidence >= e.tun.WeakKnowledgeConf {
			return false
		}
	}
	return true
}
