// Package scoring ranks knowledge entries against a query using a
// transparent, hand-tunable lexical heuristic. It is deliberately not a
// trained model: every component is inspectable and its weight lives in
// configuration.
package scoring

import (
	"sort"
	"strings"

	"github.com/tokenforge/sage/internal/config"
	"github.com/tokenforge/sage/internal/model"
)

// Engine scores and ranks knowledge entries.
type Engine struct {
	tun config.Tunables
}

// NewEngine creates an Engine with the given tunables.
func NewEngine(tun config.Tunables) *Engine {
	return &Engine{tun: tun}
}

// Match is one scored knowledge entry.
type Match struct {
	Entry model.KnowledgeEntry
	Score float64
}

// Score computes the weighted relevance of one entry to a query. The five
// component scores are summed with their configured weights, then multiplied
// by a confidence factor floored at 0.5 so low confidence dampens but never
// zeroes an otherwise relevant entry.
func (g *Engine) Score(query string, entry model.KnowledgeEntry) float64 {
	q := newQueryFeatures(query)
	e := newEntryFeatures(entry)

	total := g.tun.PhraseWeight*phraseScore(q, e) +
		g.tun.BigramWeight*bigramScore(q, e) +
		g.tun.WordWeight*wordScore(q, e) +
		g.tun.TopicWeight*topicFieldScore(q, e) +
		g.tun.QuestionTypeWeight*questionTypeScore(q, e)

	factor := float64(entry.Confidence)/100 + 0.5
	return total * factor
}

// Rank scores every entry against the query, drops candidates at or below
// the minimum score, and returns the survivors sorted strictly descending by
// score with ties broken by descending confidence, capped at the configured
// result count.
func (g *Engine) Rank(query string, entries []model.KnowledgeEntry) []Match {
	var matches []Match
	for _, e := range entries {
		s := g.Score(query, e)
		if s <= g.tun.MinScore {
			continue
		}
		matches = append(matches, Match{Entry: e, Score: s})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Entry.Confidence > matches[j].Entry.Confidence
	})
	if g.tun.MaxResults > 0 && len(matches) > g.tun.MaxResults {
		matches = matches[:g.tun.MaxResults]
	}
	return matches
}

// queryFeatures caches the derived views of a query shared by the component
// scorers.
type queryFeatures struct {
	raw     string
	phrases []string
	bigrams []string
	words   []string
	qtype   QuestionType
}

func newQueryFeatures(query string) queryFeatures {
	q := strings.ToLower(strings.TrimSpace(query))
	return queryFeatures{
		raw:     q,
		phrases: extractPhrases(q),
		bigrams: extractBigrams(q),
		words:   extractWords(q),
		qtype:   DetectQuestionType(q),
	}
}

// entryFeatures caches the lowercased entry fields.
type entryFeatures struct {
	topic    string
	subtopic string
	info     string
	all      string
	words    map[string]bool
}

func newEntryFeatures(e model.KnowledgeEntry) entryFeatures {
	topic := strings.ToLower(e.Topic)
	subtopic := strings.ToLower(e.Subtopic)
	info := strings.ToLower(e.Information)
	all := topic + " " + subtopic + " " + info
	words := make(map[string]bool)
	for _, w := range tokenize(all) {
		words[w] = true
	}
	return entryFeatures{topic: topic, subtopic: subtopic, info: info, all: all, words: words}
}

// phraseScore rewards whole query phrases appearing in the entry text.
// Longer phrases earn more; landing in the topic fields earns a flat bonus.
func phraseScore(q queryFeatures, e entryFeatures) float64 {
	var score float64
	for _, p := range q.phrases {
		if !strings.Contains(e.all, p) {
			continue
		}
		score += 3 * (1 + float64(len(p))/10)
		if strings.Contains(e.topic, p) || strings.Contains(e.subtopic, p) {
			score += 5
		}
	}
	return score
}

// bigramScore rewards adjacent query word pairs found in the entry text.
func bigramScore(q queryFeatures, e entryFeatures) float64 {
	var score float64
	for _, b := range q.bigrams {
		if !strings.Contains(e.all, b) {
			continue
		}
		score += 2
		if strings.Contains(e.topic, b) || strings.Contains(e.subtopic, b) {
			score += 1.5
		}
	}
	return score
}

// wordScore rewards individual significant query words: substring hits,
// whole-word hits, and repeated occurrences beyond the first.
func wordScore(q queryFeatures, e entryFeatures) float64 {
	var score float64
	for _, w := range q.words {
		occurrences := strings.Count(e.all, w)
		if occurrences == 0 {
			continue
		}
		score += 1
		if e.words[w] {
			score += 0.5
		}
		if occurrences > 1 {
			score += 0.2 * float64(occurrences-1)
		}
	}
	return score
}

// topicFieldScore rewards query words landing specifically in the topic or
// subtopic fields.
func topicFieldScore(q queryFeatures, e entryFeatures) float64 {
	var score float64
	for _, w := range q.words {
		if strings.Contains(e.topic, w) {
			score += 2
		} else if strings.Contains(e.subtopic, w) {
			score += 1.5
		}
	}
	return score
}

// questionTypeScore rewards entries whose information matches the query's
// interrogative type (e.g. step-by-step content for "how" questions).
func questionTypeScore(q queryFeatures, e entryFeatures) float64 {
	award, markers := q.qtype.markers()
	for _, m := range markers {
		if strings.Contains(e.info, m) {
			return award
		}
	}
	return 0
}

// extractPhrases returns punctuation-delimited segments plus 2-3 word
// n-grams, deduplicated, shortest-first.
func extractPhrases(q string) []string {
	seen := make(map[string]bool)
	var phrases []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if len(p) < 4 || seen[p] {
			return
		}
		seen[p] = true
		phrases = append(phrases, p)
	}

	for _, seg := range strings.FieldsFunc(q, func(r rune) bool {
		return r == ',' || r == '.' || r == '?' || r == '!' || r == ';' || r == ':'
	}) {
		add(seg)
	}

	words := tokenize(q)
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(words); i++ {
			add(strings.Join(words[i:i+n], " "))
		}
	}
	return phrases
}

// extractBigrams returns adjacent word pairs.
func extractBigrams(q string) []string {
	words := tokenize(q)
	var bigrams []string
	for i := 0; i+1 < len(words); i++ {
		bigrams = append(bigrams, words[i]+" "+words[i+1])
	}
	return bigrams
}

// extractWords returns tokens longer than two characters, deduplicated.
func extractWords(q string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range tokenize(q) {
		if len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			return false
		}
		return true
	})
}
