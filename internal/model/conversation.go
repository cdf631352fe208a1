package model

import "time"

// Turn is one question/answer exchange in a conversation.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Topics    []string  `json:"topics,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationMemory holds the recent exchanges for one user. It is a
// tie-breaking signal for classification and a personalization source; the
// owner caps its growth.
type ConversationMemory struct {
	UserID          string    `json:"user_id"`
	Turns           []Turn    `json:"turns"`
	LastInteraction time.Time `json:"last_interaction"`
}

// RecentTurns returns up to n of the most recent turns, newest last.
func (m *ConversationMemory) RecentTurns(n int) []Turn {
	if m == nil || n <= 0 {
		return nil
	}
	if len(m.Turns) <= n {
		return m.Turns
	}
	return m.Turns[len(m.Turns)-n:]
}
