// Package activity contains Temporal activities for the background
// learning loop.
package activity

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/tokenforge/sage/internal/learning"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/platform"
)

// Activity registration names, matched by the workflow definitions.
const (
	ActivityProcessFeedbackBatch = "ProcessFeedbackBatch"
	ActivitySyncPlatformState    = "SyncPlatformState"
	ActivityRollupDay            = "RollupDay"
)

// LearningActivities bundles the learner-side activities.
type LearningActivities struct {
	Learner *learning.Learner
	Daily   *metrics.Daily
}

// NewLearningActivities creates a LearningActivities.
func NewLearningActivities(learner *learning.Learner, daily *metrics.Daily) *LearningActivities {
	return &LearningActivities{Learner: learner, Daily: daily}
}

// ProcessFeedbackBatch runs one learner pass over unprocessed feedback
// events and returns how many events were handled. Processed flags are the
// durable checkpoint: re-running after a crash picks up only the remainder.
func (a *LearningActivities) ProcessFeedbackBatch(ctx context.Context) (int, error) {
	logger := activity.GetLogger(ctx)
	n := a.Learner.ProcessBatch(ctx)
	logger.Info("Feedback batch processed", "events", n)
	return n, nil
}

// RollupDay returns the finished rollup row for one day so the workflow can
// record it in its history.
func (a *LearningActivities) RollupDay(ctx context.Context, day string) (model.LearningMetricsDaily, error) {
	row := a.Daily.Day(day)
	activity.GetLogger(ctx).Info("Daily learning rollup",
		"day", row.Day,
		"interactions", row.Interactions,
		"positive", row.PositiveRatings,
		"negative", row.NegativeRatings,
		"gaps", row.GapsIdentified)
	return row, nil
}

// ScanActivities bundles the platform-state scan activity.
type ScanActivities struct {
	Detector *platform.DeltaDetector
}

// NewScanActivities creates a ScanActivities.
func NewScanActivities(detector *platform.DeltaDetector) *ScanActivities {
	return &ScanActivities{Detector: detector}
}

// SyncResult reports one platform-state sync.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SyncPlatformState pulls one snapshot and applies its deltas to the
// knowledge store.
func (a *ScanActivities) SyncPlatformState(ctx context.Context) (SyncResult, error) {
	created, updated, err := a.Detector.Sync(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	activity.GetLogger(ctx).Info("Platform state synced", "created", created, "updated", updated)
	return SyncResult{Created: created, Updated: updated}, nil
}
