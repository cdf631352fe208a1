package model

import "time"

// TaskType identifies the kind of corrective work a system task carries.
type TaskType string

const (
	TaskKnowledgeGap         TaskType = "knowledge_gap"
	TaskReviewClassification TaskType = "review_classification"
	TaskImproveReasoning     TaskType = "improve_reasoning"
	TaskReviewKnowledge      TaskType = "review_knowledge"
)

// TaskStatus is the lifecycle state of a system task. Tasks are never
// deleted, only transitioned; completed is terminal.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// SystemTask is a unit of corrective work scheduled by the feedback learner
// or the platform scanner. Data is an opaque payload for the handler.
type SystemTask struct {
	ID           string         `json:"id" yaml:"id"`
	TaskType     TaskType       `json:"task_type" yaml:"task_type"`
	Priority     int            `json:"priority" yaml:"priority"` // 0-100, higher first
	Status       TaskStatus     `json:"status" yaml:"status"`
	Data         map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	ScheduledFor time.Time      `json:"scheduled_for" yaml:"scheduled_for"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
}

// LearningMetricsDaily is one day's learning activity rollup. Counters only
// grow; updates are per-field additive so concurrent learner passes never
// clobber each other.
type LearningMetricsDaily struct {
	Day             string `json:"day" yaml:"day"` // YYYY-MM-DD
	Interactions    int64  `json:"interactions" yaml:"interactions"`
	PositiveRatings int64  `json:"positive_ratings" yaml:"positive_ratings"`
	NegativeRatings int64  `json:"negative_ratings" yaml:"negative_ratings"`
	GapsIdentified  int64  `json:"gaps_identified" yaml:"gaps_identified"`
	EntriesCreated  int64  `json:"entries_created" yaml:"entries_created"`
	EntriesUpdated  int64  `json:"entries_updated" yaml:"entries_updated"`
}
