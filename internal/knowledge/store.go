// Package knowledge implements the knowledge store: topic-keyed facts with
// confidence and relationships, held in memory and optionally persisted as
// YAML files on the local filesystem.
package knowledge

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

// Store manages knowledge entries. All access goes through the store's lock;
// confidence updates are read-modify-write under the write lock so concurrent
// learner passes compose instead of clobbering each other.
//
// Persistence layout: {baseDir}/entry-{id}.yaml, one file per entry, written
// whole on every mutation. An empty baseDir disables persistence.
type Store struct {
	mu      sync.RWMutex
	baseDir string
	entries map[string]model.KnowledgeEntry // by ID
	byTopic map[string][]string             // lowercased topic -> IDs, insertion order
}

// NewStore creates a Store persisting to baseDir, loading any entries already
// on disk. Pass an empty baseDir for a purely in-memory store.
func NewStore(baseDir string) (*Store, error) {
	s := &Store{
		baseDir: baseDir,
		entries: make(map[string]model.KnowledgeEntry),
		byTopic: make(map[string][]string),
	}
	if baseDir == "" {
		return s, nil
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating knowledge dir: %w", err)
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) loadAll() error {
	dirEntries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("reading knowledge dir: %w", err)
	}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, de.Name()))
		if err != nil {
			continue
		}
		var e model.KnowledgeEntry
		if err := yaml.Unmarshal(data, &e); err != nil {
			continue // skip malformed entries
		}
		e.Confidence = model.ClampConfidence(e.Confidence)
		s.index(e)
	}
	return nil
}

// index inserts an entry into the in-memory maps. Caller holds the lock (or
// is still single-threaded during load).
func (s *Store) index(e model.KnowledgeEntry) {
	key := strings.ToLower(e.Topic)
	if _, exists := s.entries[e.ID]; !exists {
		s.byTopic[key] = append(s.byTopic[key], e.ID)
	}
	s.entries[e.ID] = e
}

func (s *Store) persist(e model.KnowledgeEntry) error {
	if s.baseDir == "" {
		return nil
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling knowledge entry: %w", err)
	}
	path := filepath.Join(s.baseDir, "entry-"+e.ID+".yaml")
	return os.WriteFile(path, data, 0o644)
}

// Create stores a new entry, assigning its ID and creation time and clamping
// confidence. The stored entry is returned.
func (s *Store) Create(e model.KnowledgeEntry) (model.KnowledgeEntry, error) {
	if strings.TrimSpace(e.Topic) == "" {
		return model.KnowledgeEntry{}, fmt.Errorf("knowledge entry needs a topic")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.Confidence = model.ClampConfidence(e.Confidence)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[e.ID]; exists {
		return model.KnowledgeEntry{}, fmt.Errorf("knowledge entry %q already exists", e.ID)
	}
	s.index(e)
	if err := s.persist(e); err != nil {
		return model.KnowledgeEntry{}, err
	}
	return e, nil
}

// Replace overwrites an existing entry's content whole, preserving its ID and
// creation time. Returns false when the ID is unknown.
func (s *Store) Replace(id string, e model.KnowledgeEntry) (model.KnowledgeEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.entries[id]
	if !ok {
		return model.KnowledgeEntry{}, false
	}
	e.ID = old.ID
	e.CreatedAt = old.CreatedAt
	e.Confidence = model.ClampConfidence(e.Confidence)
	if !strings.EqualFold(old.Topic, e.Topic) {
		s.unindexTopic(old)
		s.byTopic[strings.ToLower(e.Topic)] = append(s.byTopic[strings.ToLower(e.Topic)], e.ID)
	}
	s.entries[id] = e
	_ = s.persist(e)
	return e, true
}

func (s *Store) unindexTopic(e model.KnowledgeEntry) {
	key := strings.ToLower(e.Topic)
	ids := s.byTopic[key]
	for i, id := range ids {
		if id == e.ID {
			s.byTopic[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

// AdjustConfidence applies a delta to an entry's confidence under the write
// lock, clamped to [0,100]. Returns the new confidence and whether the entry
// exists.
func (s *Store) AdjustConfidence(id string, delta int) (int, bool) {
	return s.AdjustConfidenceFloor(id, delta, 0)
}

// AdjustConfidenceFloor is AdjustConfidence with a lower bound: a negative
// delta never drags confidence below floor, but an entry already below floor
// is left where it is rather than raised.
func (s *Store) AdjustConfidenceFloor(id string, delta int, floor int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return 0, false
	}
	next := model.ClampConfidence(e.Confidence + delta)
	if delta < 0 && next < floor {
		if e.Confidence >= floor {
			next = floor
		} else {
			next = e.Confidence
		}
	}
	e.Confidence = next
	s.entries[id] = e
	_ = s.persist(e)
	return next, true
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (model.KnowledgeEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// GetByTopic returns all entries whose topic matches (case-insensitive).
func (s *Store) GetByTopic(topic string) []model.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byTopic[strings.ToLower(topic)]
	out := make([]model.KnowledgeEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entries[id])
	}
	return out
}

// GetAll returns every entry, ordered by topic then creation time so scans
// are deterministic.
func (s *Store) GetAll() []model.KnowledgeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.KnowledgeEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Topic != out[j].Topic {
			return out[i].Topic < out[j].Topic
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// FindByCategory returns entries in a category; a non-empty term further
// filters to entries whose search text contains it (case-insensitive).
func (s *Store) FindByCategory(cat model.KnowledgeCategory, term string) []model.KnowledgeEntry {
	term = strings.ToLower(term)
	var out []model.KnowledgeEntry
	for _, e := range s.GetAll() {
		if e.Category != cat {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(e.SearchText()), term) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
