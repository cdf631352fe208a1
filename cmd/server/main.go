// Package main is the Sage API server entry point.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tokenforge/sage/internal/augment"
	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/engine"
	"github.com/tokenforge/sage/internal/knowledge"
	"github.com/tokenforge/sage/internal/learning"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/reasoning"
	"github.com/tokenforge/sage/internal/server"
	"github.com/tokenforge/sage/internal/tasks"
	"github.com/tokenforge/sage/internal/users"
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

	registry := prometheus.NewRegistry()
	prom := metrics.New()
	if err := metrics.RegisterWith(registry, prom); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register metrics: %v\n", err)
		os.Exit(1)
	}
	daily, err := metrics.NewDaily(cfg.Store.MetricsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open metrics store: %v\n", err)
		os.Exit(1)
	}

	svc := augment.NewAnthropicService(cfg.Augment)
	gateway := augment.NewGateway(svc, cfg.Augment, cfg.Tunables)
	patterns := reasoning.NewStore()

	eng := engine.New(engine.Options{
		Store:     store,
		Patterns:  patterns,
		Gateway:   gateway,
		Directory: users.NewInMemory(),
		Daily:     daily,
		Prom:      prom,
		Tunables:  cfg.Tunables,
	})

	s := server.New(server.Options{
		Engine:   eng,
		Events:   events,
		Store:    store,
		Tasks:    taskStore,
		Daily:    daily,
		Registry: registry,
	})

	logger.Info("Sage server listening",
		"addr", cfg.Server.Addr,
		"entries", store.Len(),
		"augmentation", svc.IsAvailable())
	if err := http.ListenAndServe(cfg.Server.Addr, s); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func configPath() string {
	if p := os.Getenv("SAGE_CONFIG"); p != "" {
		return p
	}
	return "sage.yaml"
}
