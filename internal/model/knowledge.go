package model

import "time"

// KnowledgeCategory classifies the kind of knowledge entry.
type KnowledgeCategory string

const (
	KnowledgePlatform    KnowledgeCategory = "platform"
	KnowledgeDictionary  KnowledgeCategory = "dictionary"
	KnowledgeGeneral     KnowledgeCategory = "general"
	KnowledgeTechnical   KnowledgeCategory = "technical"
	KnowledgeMarketplace KnowledgeCategory = "marketplace"
	KnowledgeKYC         KnowledgeCategory = "kyc"
)

// KnowledgeSource describes how a knowledge entry was created.
type KnowledgeSource string

const (
	KnowledgeSourceManual       KnowledgeSource = "manual"
	KnowledgeSourceAugmentation KnowledgeSource = "augmentation"
	KnowledgeSourceFeedback     KnowledgeSource = "feedback"
	KnowledgeSourceScanner      KnowledgeSource = "scanner"
)

// KnowledgeEntry is a stored fact keyed by topic. Confidence is an integer
// percentage, always clamped to [0,100]. Entries are replaced whole; partial
// writes never happen.
type KnowledgeEntry struct {
	ID            string            `json:"id" yaml:"id"`
	Topic         string            `json:"topic" yaml:"topic"`
	Subtopic      string            `json:"subtopic,omitempty" yaml:"subtopic,omitempty"`
	Category      KnowledgeCategory `json:"category" yaml:"category"`
	Information   string            `json:"information" yaml:"information"`
	Confidence    int               `json:"confidence" yaml:"confidence"`
	Relationships []string          `json:"relationships,omitempty" yaml:"relationships,omitempty"`
	Source        KnowledgeSource   `json:"source" yaml:"source"`
	CreatedAt     time.Time         `json:"created_at" yaml:"created_at"`
}

// ClampConfidence forces a confidence value into the valid [0,100] band.
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// SearchText returns the concatenated text the scoring engine matches
// against: topic, subtopic and information.
func (e KnowledgeEntry) SearchText() string {
	return e.Topic + " " + e.Subtopic + " " + e.Information
}
