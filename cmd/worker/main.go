// Package main is the learning worker entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	temporalactivity "go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/tokenforge/sage/internal/activity"
	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/knowledge"
	"github.com/tokenforge/sage/internal/learning"
	"github.com/tokenforge/sage/internal/logging"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/platform"
	"github.com/tokenforge/sage/internal/reasoning"
	"github.com/tokenforge/sage/internal/tasks"
	"github.com/tokenforge/sage/internal/workflow"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadFile(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := knowledge.NewStore(cfg.Store.KnowledgeDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open knowledge store: %v\n", err)
		os.Exit(1)
	}
	events, err := learning.NewEventStore(cfg.Store.FeedbackDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open feedback store: %v\n", err)
		os.Exit(1)
	}
	taskStore, err := tasks.NewStore(cfg.Store.TasksDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open task store: %v\n", err)
		os.Exit(1)
	}

	svc := augment.NewAnthropicService(cfg.Augment)
	sink := tasks.NewSink(taskStore, cfg.Sinks)
	patterns := reasoning.NewStore()
	daily, err := metrics.NewDaily(cfg.Store.MetricsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open metrics store: %v\n", err)
		os.Exit(1)
	}
	prom := metrics.New()

	learner := learning.New(events, store, patterns, svc, sink, daily, prom, cfg.Tunables)
	detector := platform.NewDeltaDetector(platform.NewFileScanner(platformStatePath(cfg)), store)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logging.NewSlogAdapter(logger),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to Temporal: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()
	logger.Info("Connected to Temporal",
		"address", cfg.Temporal.Address,
		"task_queue", workflow.TaskQueue)

	learningActs := activity.NewLearningActivities(learner, daily)
	scanActs := activity.NewScanActivities(detector)

	w := worker.New(c, workflow.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflow.LearningBatch)
	w.RegisterWorkflow(workflow.DailyRollup)
	w.RegisterWorkflow(workflow.PlatformScan)

	// Explicit names keep registration aligned with the workflow constants.
	w.RegisterActivityWithOptions(learningActs.ProcessFeedbackBatch, temporalactivity.RegisterOptions{Name: activity.ActivityProcessFeedbackBatch})
	w.RegisterActivityWithOptions(learningActs.RollupDay, temporalactivity.RegisterOptions{Name: activity.ActivityRollupDay})
	w.RegisterActivityWithOptions(scanActs.SyncPlatformState, temporalactivity.RegisterOptions{Name: activity.ActivitySyncPlatformState})

	logger.Info("Worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("worker failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}

func configPath() string {
	if p := os.Getenv("SAGE_CONFIG"); p != "" {
		return p
	}
	return "sage.yaml"
}

// platformStatePath is where operational tooling drops the platform state
// snapshot. A missing file is an empty snapshot.
func platformStatePath(cfg *config.Config) string {
	if p := os.Getenv("SAGE_PLATFORM_STATE"); p != "" {
		return p
	}
	return filepath.Join(cfg.Store.Dir, "platform-state.yaml")
}
