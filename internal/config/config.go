// Package config provides configuration loading for the Sage engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SupportedVersions lists all schema versions supported by this loader.
var SupportedVersions = []int{1}

// versionHeader is used to extract just the version from YAML.
type versionHeader struct {
	Version *int `yaml:"version"`
}

// Config is the full engine configuration.
type Config struct {
	Version  int      `yaml:"version"`
	Server   Server   `yaml:"server"`
	Temporal Temporal `yaml:"temporal"`
	Augment  Augment  `yaml:"augment"`
	Store    Store    `yaml:"store"`
	Sinks    Sinks    `yaml:"sinks"`
	Tunables Tunables `yaml:"tunables"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `yaml:"addr"`
}

// Temporal configures the background worker connection.
type Temporal struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
}

// Augment configures the external augmentation service call.
type Augment struct {
	// Model is the generative model identifier; empty disables augmentation
	// and the gateway runs on its deterministic fallback only.
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// UnmarshalYAML decodes the augment section, accepting Go duration strings
// ("20s", "1m30s") for the timeout and leaving absent fields at their
// defaults.
func (a *Augment) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Model     *string `yaml:"model"`
		MaxTokens *int    `yaml:"max_tokens"`
		Timeout   *string `yaml:"timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Model != nil {
		a.Model = *raw.Model
	}
	if raw.MaxTokens != nil {
		a.MaxTokens = *raw.MaxTokens
	}
	if raw.Timeout != nil {
		d, err := time.ParseDuration(*raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid augment timeout: %w", err)
		}
		a.Timeout = d
	}
	return nil
}

// Store configures state persistence. An empty Dir keeps everything
// in-memory, which is fine for a single process but loses state on restart.
type Store struct {
	Dir string `yaml:"dir"`
}

// KnowledgeDir is where knowledge entries are persisted; empty disables.
func (s Store) KnowledgeDir() string { return s.sub("knowledge") }

// FeedbackDir is where feedback events are persisted; empty disables.
func (s Store) FeedbackDir() string { return s.sub("feedback") }

// TasksDir is where system tasks are persisted; empty disables.
func (s Store) TasksDir() string { return s.sub("tasks") }

// MetricsDir is where daily learning rollups are persisted; empty disables.
func (s Store) MetricsDir() string { return s.sub("metrics") }

func (s Store) sub(name string) string {
	if s.Dir == "" {
		return ""
	}
	return filepath.Join(s.Dir, name)
}

// Sinks configures where admin review items fan out to. Both are optional.
type Sinks struct {
	SlackChannel string `yaml:"slack_channel"`
	GitHubRepo   string `yaml:"github_repo"` // "owner/repo"
}

// Tunables holds the hand-tuned constants of the scoring and learning
// heuristics. Defaults reproduce the original tuning; they are configuration
// so deployments can adjust them, not because better values are known.
type Tunables struct {
	// Scoring component weights.
	PhraseWeight       float64 `yaml:"phrase_weight"`
	BigramWeight       float64 `yaml:"bigram_weight"`
	WordWeight         float64 `yaml:"word_weight"`
	TopicWeight        float64 `yaml:"topic_weight"`
	QuestionTypeWeight float64 `yaml:"question_type_weight"`
	// MinScore discards candidates at or below this weighted score.
	MinScore float64 `yaml:"min_score"`
	// MaxResults caps how many scored candidates are returned.
	MaxResults int `yaml:"max_results"`

	// Retrieval.
	ConfidenceFloor int `yaml:"confidence_floor"` // applied when > FloorMinEntries found
	FloorMinEntries int `yaml:"floor_min_entries"`

	// Learning.
	GapThreshold      float64 `yaml:"gap_threshold"`
	PositiveBoost     int     `yaml:"positive_boost"`
	NegativeFloor     int     `yaml:"negative_floor"`
	BatchSize         int     `yaml:"batch_size"`
	MintedMinConf     int     `yaml:"minted_min_confidence"`
	MintedMaxConf     int     `yaml:"minted_max_confidence"`
	WeakKnowledgeConf int     `yaml:"weak_knowledge_confidence"` // below this, augmentation kicks in

	// Conversation memory.
	MemoryTurns int `yaml:"memory_turns"` // per-user cap
}

// Default returns a Config with every tunable at its original hand-tuned
// value and sensible local addresses.
func Default() *Config {
	return &Config{
		Version: 1,
		Server:  Server{Addr: ":8084"},
		Temporal: Temporal{
			Address:   "localhost:7233",
			Namespace: "default",
		},
		Augment: Augment{
			MaxTokens: 2048,
			Timeout:   20 * time.Second,
		},
		Store:    Store{Dir: defaultStateDir()},
		Tunables: DefaultTunables(),
	}
}

// defaultStateDir is ~/.sage, mirroring where other local state lives.
func defaultStateDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sage")
}

// DefaultTunables returns the original hand-tuned heuristic constants.
func DefaultTunables() Tunables {
	return Tunables{
		PhraseWeight:       0.3,
		BigramWeight:       0.2,
		WordWeight:         0.2,
		TopicWeight:        0.2,
		QuestionTypeWeight: 0.1,
		MinScore:           0.5,
		MaxResults:         10,
		ConfidenceFloor:    50,
		FloorMinEntries:    3,
		GapThreshold:       0.3,
		PositiveBoost:      2,
		NegativeFloor:      50,
		BatchSize:          50,
		MintedMinConf:      70,
		MintedMaxConf:      95,
		WeakKnowledgeConf:  50,
		MemoryTurns:        20,
	}
}

// Load parses a Config from YAML data with schema version validation.
func Load(data []byte) (*Config, error) {
	var header versionHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if header.Version == nil {
		return nil, errors.New("version field is required")
	}
	switch *header.Version {
	case 1:
		return loadV1(data)
	default:
		return nil, fmt.Errorf("unsupported schema version: %d (supported: %v)", *header.Version, SupportedVersions)
	}
}

// LoadFile parses a Config from a YAML file path. A missing path returns
// defaults so the engine can run unconfigured.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Load(data)
}

func loadV1(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that tunables are inside their legal bands.
func (c *Config) Validate() error {
	t := c.Tunables
	if t.GapThreshold < 0 || t.GapThreshold > 1 {
		return fmt.Errorf("gap_threshold %v outside [0,1]", t.GapThreshold)
	}
	if t.ConfidenceFloor < 0 || t.ConfidenceFloor > 100 {
		return fmt.Errorf("confidence_floor %d outside [0,100]", t.ConfidenceFloor)
	}
	if t.MintedMinConf > t.MintedMaxConf {
		return fmt.Errorf("minted confidence band inverted: [%d,%d]", t.MintedMinConf, t.MintedMaxConf)
	}
	if t.BatchSize <= 0 {
		return errors.New("batch_size must be positive")
	}
	for name, w := range map[string]float64{
		"phrase_weight":        t.PhraseWeight,
		"bigram_weight":        t.BigramWeight,
		"word_weight":          t.WordWeight,
		"topic_weight":         t.TopicWeight,
		"question_type_weight": t.QuestionTypeWeight,
	} {
		if w < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
