// Package compose merges retrieved knowledge, the selected reasoning
// pattern and light personalization into the final answer.
package compose

import (
	"hash/fnv"
	"strings"

	"github.com/tokenforge/sage/internal/classify"
	"github.com/tokenforge/sage/internal/model"
	"github.com/tokenforge/sage/internal/reasoning"
)

// Input carries everything the composer needs for one answer.
type Input struct {
	Query    string
	Category model.Category
	Entries  []model.KnowledgeEntry
	// BaseText is a pre-written answer from augmentation; when set the
	// entries only contribute confidence and sources.
	BaseText       string
	BaseConfidence float64
	Augmented      bool
	User           *model.User
	History        []model.Turn
}

// Composer renders answers.
type Composer struct {
	patterns *reasoning.Store
}

// New creates a Composer.
func New(patterns *reasoning.Store) *Composer {
	return &Composer{patterns: patterns}
}

// Compose renders the final answer for one query.
func (c *Composer) Compose(in Input) model.Answer {
	pattern := c.patterns.Select(in.Category)

	text := in.BaseText
	if text == "" {
		text = formatEntries(in.Category, in.Entries)
	}
	if text == "" {
		text = patternFallback(pattern, in.Query)
	}
	text = c.personalize(text, in)

	sources := make([]string, 0, len(in.Entries))
	for _, e := range in.Entries {
		sources = append(sources, e.Topic)
	}

	return model.Answer{
		Text:       text,
		Category:   in.Category,
		Confidence: c.confidence(in),
		Sources:    sources,
		Action:     deriveAction(in.Query, in.Category, in.Entries),
		Augmented:  in.Augmented,
	}
}

// patternFallback answers from the reasoning pattern itself when neither
// knowledge nor augmentation produced text: a pattern example whose question
// overlaps the query, else an honest no-knowledge reply.
func patternFallback(pattern model.ReasoningPattern, query string) string {
	words := classify.SignificantWords(query)
	for _, ex := range pattern.Examples {
		q := strings.ToLower(ex.Question + " " + ex.Input)
		for _, w := range words {
			if strings.Contains(q, w) {
				if ex.Answer != "" {
					return ex.Answer
				}
				return ex.Output
			}
		}
	}
	return "I don't have a confident answer for that yet."
}

// confidence combines the base certainty with three bounded bonuses:
// query/knowledge word overlap (0.2), conversation recency (0.1) and a
// platform-category bonus (0.1), clamped to [0,1].
func (c *Composer) confidence(in Input) float64 {
	base := in.BaseConfidence
	if base == 0 && len(in.Entries) > 0 {
		var sum int
		for _, e := range in.Entries {
			sum += e.Confidence
		}
		base = float64(sum) / float64(len(in.Entries)) / 100 * 0.6
	}

	conf := base + 0.2*contextRelevance(in.Query, in.Entries) + 0.1*memoryRelevance(in.Query, in.History)
	if in.Category.IsPlatform() {
		conf += 0.1
	}
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}

// contextRelevance is the fraction of significant query words present in
// the retrieved knowledge text.
func contextRelevance(query string, entries []model.KnowledgeEntry) float64 {
	words := classify.SignificantWords(query)
	if len(words) == 0 || len(entries) == 0 {
		return 0
	}
	var all strings.Builder
	for _, e := range entries {
		all.WriteString(strings.ToLower(e.SearchText()))
		all.WriteString(" ")
	}
	text := all.String()
	covered := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			covered++
		}
	}
	return float64(covered) / float64(len(words))
}

// memoryRelevance is 1 when the recent turns share a significant word with
// the current query, 0 otherwise.
func memoryRelevance(query string, history []model.Turn) float64 {
	words := classify.SignificantWords(query)
	for _, t := range history {
		prev := strings.ToLower(t.Question)
		for _, w := range words {
			if strings.Contains(prev, w) {
				return 1
			}
		}
	}
	return 0
}

// formatEntries renders retrieved entries per knowledge category:
// dictionary entries as term definitions with related terms, platform
// entries as one running sentence block, everything else as paragraphs.
func formatEntries(cat model.Category, entries []model.KnowledgeEntry) string {
	if len(entries) == 0 {
		return ""
	}

	allDictionary := true
	allPlatform := true
	for _, e := range entries {
		if e.Category != model.KnowledgeDictionary {
			allDictionary = false
		}
		if e.Category != model.KnowledgePlatform {
			allPlatform = false
		}
	}

	switch {
	case allDictionary:
		var sb strings.Builder
		for i, e := range entries {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(e.Topic + ": " + e.Information)
			if len(e.Relationships) > 0 {
				sb.WriteString("\nRelated: " + strings.Join(e.Relationships, ", "))
			}
		}
		return sb.String()
	case allPlatform, cat.IsPlatform():
		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			parts = append(parts, e.Information)
		}
		return strings.Join(parts, " ")
	default:
		parts := make([]string, 0, len(entries))
		for _, e := range entries {
			parts = append(parts, e.Information)
		}
		return strings.Join(parts, "\n\n")
	}
}

// personalize applies username insertion, role addenda and a recency nod.
// Username insertion is "probabilistic" over users but deterministic per
// (user, question) pair so identical inputs always produce identical output.
func (c *Composer) personalize(text string, in Input) string {
	if text == "" || in.User == nil {
		return text
	}

	if in.User.Username != "" && insertUsername(in.User.ID, in.Query) {
		text = in.User.Username + ", " + lowerFirst(text)
	}

	if in.Category.IsPlatform() {
		if addendum, ok := roleAddenda[in.User.Role]; ok {
			text += " " + addendum
		}
	}

	if askedRecently(in.Query, in.History) {
		text += " (You asked about this recently; nothing has changed since.)"
	}
	return text
}

// insertUsername hashes the user/question pair into a 30% insertion rate.
func insertUsername(userID, query string) bool {
	h := fnv.New32a()
	h.Write([]byte(userID))
	h.Write([]byte(query))
	return h.Sum32()%10 < 3
}

var roleAddenda = map[string]string{
	"miner":  "Your mining dashboard has the live numbers.",
	"seller": "You can manage your own listings from the seller panel.",
}

// askedRecently reports whether the same normalized question appears in the
// recent history.
func askedRecently(query string, history []model.Turn) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, t := range history {
		if strings.ToLower(strings.TrimSpace(t.Question)) == q {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
