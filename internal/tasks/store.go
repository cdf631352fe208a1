// Package tasks implements the task sink: system tasks scheduled by the
// learner and scanner, and admin review items fanned out to operators.
package tasks

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

// Store holds system tasks. Tasks are never deleted, only transitioned;
// completed is terminal. With a non-empty baseDir each task is persisted as
// {baseDir}/task-{id}.yaml.
type Store struct {
	mu      sync.RWMutex
	baseDir string
	tasks   map[string]model.SystemTask
}

// NewStore creates a task store persisting to baseDir, loading any tasks
// already on disk. Pass an empty baseDir for in-memory only.
func NewStore(baseDir string) (*Store, error) {
	s := &Store{baseDir: baseDir, tasks: make(map[string]model.SystemTask)}
	if baseDir == "" {
		return s, nil
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tasks dir: %w", err)
	}
	dirEntries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading tasks dir: %w", err)
	}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(baseDir, de.Name()))
		if err != nil {
			continue
		}
		var t model.SystemTask
		if err := yaml.Unmarshal(data, &t); err != nil || t.ID == "" {
			continue // skip malformed tasks
		}
		s.tasks[t.ID] = t
	}
	return s, nil
}

func (s *Store) persist(t model.SystemTask) {
	if s.baseDir == "" {
		return
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(s.baseDir, "task-"+t.ID+".yaml"), data, 0o644)
}

// Create stores a new task, assigning ID, timestamps and pending status.
func (s *Store) Create(t model.SystemTask) model.SystemTask {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.ScheduledFor.IsZero() {
		t.ScheduledFor = now
	}
	t.Status = model.TaskStatusPending
	if t.Priority < 0 {
		t.Priority = 0
	}
	if t.Priority > 100 {
		t.Priority = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	s.persist(t)
	return t
}

// Complete transitions a task to its terminal state. Completing an already
// completed task is a no-op.
func (s *Store) Complete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return false
	}
	t.Status = model.TaskStatusCompleted
	s.tasks[id] = t
	s.persist(t)
	return true
}

// Pending returns pending tasks ordered by descending priority, then
// earliest schedule.
func (s *Store) Pending() []model.SystemTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.SystemTask
	for _, t := range s.tasks {
		if t.Status == model.TaskStatusPending {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return out
}

// All returns every task regardless of status.
func (s *Store) All() []model.SystemTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SystemTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
