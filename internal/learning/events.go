// Package learning consumes feedback events and closes the loop: confidence
// updates, gap detection, misclassification flags and scheduled corrective
// work.
package learning

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tokenforge/sage/internal/model"
)

// EventStore holds feedback events. Events are immutable once created
// except for the processed flag, which flips exactly once. With a non-empty
// baseDir every event is persisted as {baseDir}/event-{id}.yaml so the
// server and the worker see the same queue.
type EventStore struct {
	mu      sync.Mutex
	baseDir string
	events  map[string]model.FeedbackEvent
}

// NewEventStore creates an event store persisting to baseDir, loading any
// events already on disk. Pass an empty baseDir for in-memory only.
func NewEventStore(baseDir string) (*EventStore, error) {
	s := &EventStore{baseDir: baseDir, events: make(map[string]model.FeedbackEvent)}
	if baseDir == "" {
		return s, nil
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating feedback dir: %w", err)
	}
	s.rescan()
	return s, nil
}

func (s *EventStore) persist(e model.FeedbackEvent) {
	if s.baseDir == "" {
		return
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(s.baseDir, "event-"+e.ID+".yaml"), data, 0o644)
}

// Add validates and stores a new event.
func (s *EventStore) Add(e model.FeedbackEvent) (model.FeedbackEvent, error) {
	if err := model.ValidateRating(e.Rating); err != nil {
		return model.FeedbackEvent{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Processed = false

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	s.persist(e)
	return e, nil
}

// Unprocessed returns up to limit unprocessed events, oldest first. This is
// the learner's work queue; the processed flags it leaves behind are the
// durable checkpoint that makes a crashed batch resumable. When persistence
// is on, the directory is rescanned first so events written by another
// process are picked up.
func (s *EventStore) Unprocessed(limit int) []model.FeedbackEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rescan()
	var out []model.FeedbackEvent
	for _, e := range s.events {
		if !e.Processed {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// rescan merges events from disk into memory. A processed flag already set
// in memory wins over a stale unprocessed copy on disk. Caller holds the
// lock.
func (s *EventStore) rescan() {
	if s.baseDir == "" {
		return
	}
	dirEntries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return
	}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, de.Name()))
		if err != nil {
			continue
		}
		var e model.FeedbackEvent
		if err := yaml.Unmarshal(data, &e); err != nil || e.ID == "" {
			continue
		}
		if existing, ok := s.events[e.ID]; ok && existing.Processed {
			continue
		}
		s.events[e.ID] = e
	}
}

// MarkProcessed flips the processed flag. It returns false when the event
// is unknown or already processed, making double processing a visible no-op.
func (s *EventStore) MarkProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.Processed {
		return false
	}
	e.Processed = true
	s.events[id] = e
	s.persist(e)
	return true
}

// Get returns one event by ID.
func (s *EventStore) Get(id string) (model.FeedbackEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	return e, ok
}
