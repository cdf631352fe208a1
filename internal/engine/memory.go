package engine

import (
	"sync"
	"time"

	"github.com/tokenforge/sage/internal/model"
)

// Memory holds per-user conversation history, capped at a fixed number of
// turns so it cannot grow without bound.
type Memory struct {
	mu       sync.Mutex
	maxTurns int
	users    map[string]*model.ConversationMemory
}

// NewMemory creates a Memory keeping at most maxTurns turns per user.
func NewMemory(maxTurns int) *Memory {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &Memory{maxTurns: maxTurns, users: make(map[string]*model.ConversationMemory)}
}

// Get returns a snapshot of one user's memory, or nil for unknown users.
func (m *Memory) Get(userID string) *model.ConversationMemory {
	m.mu.Lock()
	defer m.mu.Unlock()
	cm, ok := m.users[userID]
	if !ok {
		return nil
	}
	cp := *cm
	cp.Turns = append([]model.Turn(nil), cm.Turns...)
	return &cp
}

// Record appends a turn to one user's memory, evicting the oldest turn
// beyond the cap.
func (m *Memory) Record(userID string, turn model.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cm, ok := m.users[userID]
	if !ok {
		cm = &model.ConversationMemory{UserID: userID}
		m.users[userID] = cm
	}
	cm.Turns = append(cm.Turns, turn)
	if len(cm.Turns) > m.maxTurns {
		cm.Turns = cm.Turns[len(cm.Turns)-m.maxTurns:]
	}
	if turn.Timestamp.After(cm.LastInteraction) {
		cm.LastInteraction = turn.Timestamp
	} else {
		cm.LastInteraction = time.Now().UTC()
	}
}
