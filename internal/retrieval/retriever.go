// Package retrieval orchestrates knowledge lookup: exact topic matches
// first, semantic fallback through the scoring engine second.
package retrieval

import (
	"log/slog"

	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/scoring"
)

// EntrySource is the slice of the knowledge store the retriever needs.
type EntrySource interface {
	GetByTopic(topic string) []model.KnowledgeEntry
	GetAll() []model.KnowledgeEntry
}

// Retriever finds knowledge entries for a classified query.
type Retriever struct {
	store  EntrySource
	engine *scoring.Engine
	tun    config.Tunables
}

// New creates a Retriever.
func New(store EntrySource, engine *scoring.Engine, tun config.Tunables) *Retriever {
	return &Retriever{store: store, engine: engine, tun: tun}
}

// Retrieve returns the entries relevant to the query. "No knowledge" is a
// normal outcome, reported as an empty slice, never an error.
//
// Exact topic lookups run first over the classifier-derived topic tags. A
// confidence floor is applied only when the union is large enough that
// filtering cannot starve a sparse topic. When no topic matches at all, the
// scoring engine ranks the full store.
func (r *Retriever) Retrieve(query string, topics []string) []model.KnowledgeEntry {
	var exact []model.KnowledgeEntry
	seen := make(map[string]bool)
	for _, topic := range topics {
		for _, e := range r.store.GetByTopic(topic) {
			if seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			exact = append(exact, e)
		}
	}

	if len(exact) > 0 {
		if len(exact) > r.tun.FloorMinEntries {
			filtered := exact[:0]
			for _, e := range exact {
				if e.Confidence > r.tun.ConfidenceFloor {
					filtered = append(filtered, e)
				}
			}
			exact = filtered
		}
		slog.Debug("retrieval: exact topic match", "topics", len(topics), "entries", len(exact))
		return exact
	}

	matches := r.engine.Rank(query, r.store.GetAll())
	entries := make([]model.KnowledgeEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, m.Entry)
	}
	slog.Debug("retrieval: semantic fallback", "entries", len(entries))
	return entries
}
