package model

// Answer is the engine's response to one question.
type Answer struct {
	Text       string   `json:"text"`
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"` // 0.0-1.0
	Sources    []string `json:"sources"`    // topics of the entries used
	Action     Action   `json:"action"`
	Augmented  bool     `json:"augmented"` // true when the external service contributed
}
