package model

// PatternExample pairs an input with the reasoning and output that worked
// for it. Either Reasoning or both Question/Answer may be empty depending on
// how the pattern was authored.
type PatternExample struct {
	Input     string `json:"input,omitempty" yaml:"input,omitempty"`
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Output    string `json:"output,omitempty" yaml:"output,omitempty"`
	Question  string `json:"question,omitempty" yaml:"question,omitempty"`
	Answer    string `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// ReasoningPattern is a named rule set controlling how retrieved knowledge
// is phrased for a given category. The hot path only reads patterns; the
// feedback learner may create improved ones.
type ReasoningPattern struct {
	ID       string           `json:"id" yaml:"id"`
	Category Category         `json:"category" yaml:"category"`
	Pattern  string           `json:"pattern" yaml:"pattern"`
	Rules    []string         `json:"rules" yaml:"rules"`
	Examples []PatternExample `json:"examples,omitempty" yaml:"examples,omitempty"`
	Priority int              `json:"priority" yaml:"priority"`
}
