// Package platform consumes periodic platform-state snapshots and turns
// deltas into knowledge entries, so the engine can answer operational
// questions ("how many miners are active?") from stored facts.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/tokenforge/sage/internal/model"
)

// Scanner produces an opaque snapshot of platform state: stable keys mapped
// to human-readable values ("active_miners" -> "1240").
type Scanner interface {
	Snapshot(ctx context.Context) (map[string]string, error)
}

// KnowledgeWriter is the slice of the knowledge store the delta detector
// writes through.
type KnowledgeWriter interface {
	GetByTopic(topic string) []model.KnowledgeEntry
	Create(e model.KnowledgeEntry) (model.KnowledgeEntry, error)
	Replace(id string, e model.KnowledgeEntry) (model.KnowledgeEntry, bool)
}

// snapshotConfidence is the confidence of scanner-derived facts. They come
// straight from platform state, so they start high.
const snapshotConfidence = 90

// DeltaDetector diffs consecutive snapshots and upserts a platform-category
// knowledge entry per changed key.
type DeltaDetector struct {
	mu      sync.Mutex
	scanner Scanner
	store   KnowledgeWriter
	prev    map[string]string
}

// NewDeltaDetector creates a DeltaDetector.
func NewDeltaDetector(scanner Scanner, store KnowledgeWriter) *DeltaDetector {
	return &DeltaDetector{scanner: scanner, store: store}
}

// Sync pulls one snapshot and applies its deltas. Returns how many entries
// were created and updated. The first sync treats every key as new.
func (d *DeltaDetector) Sync(ctx context.Context) (created, updated int, err error) {
	snap, err := d.scanner.Snapshot(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("platform snapshot: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := snap[key]
		if d.prev != nil && d.prev[key] == value {
			continue
		}
		topic := topicForKey(key)
		info := fmt.Sprintf("Current %s: %s.", keyLabel(key), value)

		existing := d.store.GetByTopic(topic)
		replaced := false
		for _, e := range existing {
			if e.Source != model.KnowledgeSourceScanner {
				continue
			}
			e.Information = info
			e.Confidence = snapshotConfidence
			if _, ok := d.store.Replace(e.ID, e); ok {
				updated++
				replaced = true
			}
			break
		}
		if replaced {
			continue
		}
		_, cerr := d.store.Create(model.KnowledgeEntry{
			Topic:       topic,
			Subtopic:    key,
			Category:    model.KnowledgePlatform,
			Information: info,
			Confidence:  snapshotConfidence,
			Source:      model.KnowledgeSourceScanner,
		})
		if cerr != nil {
			slog.Warn("platform sync: failed to store delta", "key", key, "err", cerr)
			continue
		}
		created++
	}

	d.prev = snap
	return created, updated, nil
}

// topicForKey turns a snapshot key into a lookup-friendly topic.
func topicForKey(key string) string {
	return keyLabel(key)
}

// keyLabel humanizes a snake_case snapshot key.
func keyLabel(key string) string {
	out := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] == '_' {
			out[i] = ' '
		} else {
			out[i] = key[i]
		}
	}
	return string(out)
}
