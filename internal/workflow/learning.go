// Package workflow contains Temporal workflow definitions for the
// background learning loop. Each workflow is one-shot and intended to run
// on a cron schedule.
package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tokenforge/sage/internal/activity"
	"github.com/tokenforge/sage/internal/model"
)

// TaskQueue is the queue every Sage workflow and activity runs on.
const TaskQueue = "sage-learning"

func defaultRetry() *temporal.RetryPolicy {
	return &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    3,
	}
}

// LearningBatch drains one batch of unprocessed feedback events through the
// learner. One run handles at most the configured batch size; the cron
// schedule provides the steady drain.
func LearningBatch(ctx workflow.Context) (int, error) {
	logger := workflow.GetLogger(ctx)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy:         defaultRetry(),
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var processed int
	if err := workflow.ExecuteActivity(ctx, activity.ActivityProcessFeedbackBatch).Get(ctx, &processed); err != nil {
		return 0, err
	}
	logger.Info("Learning batch complete", "processed", processed)
	return processed, nil
}

// DailyRollup records the previous day's learning metrics row into the
// workflow history, giving operators a durable daily trail.
func DailyRollup(ctx workflow.Context) (*model.LearningMetricsDaily, error) {
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy:         defaultRetry(),
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	day := workflow.Now(ctx).UTC().AddDate(0, 0, -1).Format("2006-01-02")

	var row model.LearningMetricsDaily
	if err := workflow.ExecuteActivity(ctx, activity.ActivityRollupDay, day).Get(ctx, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// PlatformScan pulls one platform-state snapshot and feeds its deltas into
// the knowledge store.
func PlatformScan(ctx workflow.Context) (*activity.SyncResult, error) {
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         defaultRetry(),
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result activity.SyncResult
	if err := workflow.ExecuteActivity(ctx, activity.ActivitySyncPlatformState).Get(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
