// Package metrics defines Prometheus metrics and the daily learning rollup
// for the Sage engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all registered Prometheus collectors.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	AnswerConfidence   prometheus.Histogram
	AugmentationsTotal *prometheus.CounterVec
	FeedbackTotal      *prometheus.CounterVec
	GapsTotal          prometheus.Counter
	EntriesCreated     prometheus.Counter
	EntriesUpdated     prometheus.Counter
	LearningBatchSecs  prometheus.Histogram
}

// New creates uninitialised metric instances.
func New() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_queries_total",
				Help: "Total questions answered, by classified category.",
			},
			[]string{"category"},
		),
		AnswerConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sage_answer_confidence",
			Help:    "Confidence of returned answers.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		AugmentationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_augmentations_total",
				Help: "External augmentation calls by result (ok, fallback, malformed).",
			},
			[]string{"result"},
		),
		FeedbackTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sage_feedback_total",
				Help: "Processed feedback events by learning path (positive, gap, reasoning).",
			},
			[]string{"path"},
		),
		GapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sage_knowledge_gaps_total",
			Help: "Knowledge gaps identified by the feedback learner.",
		}),
		EntriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sage_knowledge_entries_created_total",
			Help: "Knowledge entries created by any ingestion path.",
		}),
		EntriesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sage_knowledge_entries_updated_total",
			Help: "Knowledge entries whose confidence or content was updated.",
		}),
		LearningBatchSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sage_learning_batch_seconds",
			Help:    "Duration of each feedback learning batch.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
	}
}

// RegisterWith registers a pre-built Metrics instance with the given
// registry.
func RegisterWith(reg prometheus.Registerer, m *Metrics) error {
	collectors := []prometheus.Collector{
		m.QueriesTotal,
		m.AnswerConfidence,
		m.AugmentationsTotal,
		m.FeedbackTotal,
		m.GapsTotal,
		m.EntriesCreated,
		m.EntriesUpdated,
		m.LearningBatchSecs,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Register creates a Metrics and registers it with the given registry.
func Register(reg prometheus.Registerer) (*Metrics, error) {
	m := New()
	if err := RegisterWith(reg, m); err != nil {
		return nil, err
	}
	return m, nil
}
