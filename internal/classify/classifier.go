// Package classify routes free-text user questions to a query category.
//
// Classification is a fixed cascade of signal checks evaluated in strict
// priority order; the first stage that fires wins. Higher-priority platform
// signals veto lower-priority real-world classification so a question that
// mentions both (e.g. "history of my mining rewards") never leaves the
// platform. Given identical inputs the result is always identical: no
// randomness, no clock reads.
package classify

import (
	"strings"

	"github.com/tokenforge/sage/internal/model"
)

// historyWindow is how many recent turns feed the tie-break stage.
const historyWindow = 3

// shortQueryTokens is the token count under which an unmatched query is
// conservatively routed to General instead of RealWorld.
const shortQueryTokens = 5

// Classifier assigns queries to categories using keyword, phrase and
// conversation-context signals.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{}
}

// Classify returns the category for a query. history may be nil.
func (c *Classifier) Classify(query string, history *model.ConversationMemory) model.Category {
	q := normalize(query)
	tokens := tokenize(q)

	// KYC override: evaluated first and exempt from every later veto.
	if matchAnyWord(tokens, kycKeywords) || matchAnySubstring(q, kycPhrases) {
		return model.CategoryKYC
	}

	// Token purchase before marketplace: "buy tokens" is a purchase, not a
	// marketplace browse.
	if matchAnyWord(tokens, tokenWords) && matchAnyWord(tokens, purchaseWords) {
		return model.CategoryTokenPurchase
	}

	if matchAnyWord(tokens, marketplaceKeywords) || matchAnySubstring(q, marketplacePhrases) {
		return model.CategoryMarketplace
	}

	if matchAnyWord(tokens, platformContextKeywords) || matchAnySubstring(q, platformContextPhrases) {
		return model.CategoryPlatformContext
	}

	// Real-world check with platform veto: any platform term or phrase
	// rejects real-world classification outright.
	hasPlatformTerms := matchAnyWord(tokens, platformVetoWords)
	hasPlatformPhrases := matchAnySubstring(q, platformVetoPhrases)
	platformVeto := hasPlatformTerms || hasPlatformPhrases

	realWorldHit := false
	if !platformVeto {
		realWorldHit = matchRealWorld(q, tokens)
		if realWorldHit {
			return model.CategoryRealWorld
		}

		// Question-starter heuristic: a real-world interrogative opening with
		// no platform keyword in the remainder leans real-world.
		if starter := matchStarter(q); starter != "" {
			rest := tokenize(strings.TrimPrefix(q, starter))
			if !matchAnyWord(rest, platformVetoWords) {
				return model.CategoryRealWorld
			}
		}
	}

	// Conversation-history tie-break: only when no lexical signal fired.
	if cat, ok := historyLean(history); ok {
		return cat
	}

	// Short queries with no real-world hit stay General to avoid false
	// positives on ambiguous fragments.
	if len(tokens) < shortQueryTokens && !realWorldHit {
		return model.CategoryGeneral
	}

	return model.CategoryGeneral
}

// historyLean counts platform-leaning vs real-world-leaning topic tags in
// the last turns and returns the majority category. Equal counts resolve
// nothing.
func historyLean(history *model.ConversationMemory) (model.Category, bool) {
	if history == nil {
		return "", false
	}
	platform, realWorld := 0, 0
	for _, turn := range history.RecentTurns(historyWindow) {
		for _, topic := range turn.Topics {
			switch model.TopicCategory(topic) {
			case model.CategoryPlatformContext, model.CategoryMarketplace,
				model.CategoryTokenPurchase, model.CategoryKYC:
				platform++
			case model.CategoryRealWorld:
				realWorld++
			}
		}
	}
	if platform > realWorld {
		return model.CategoryPlatformContext, true
	}
	if realWorld > platform {
		return model.CategoryRealWorld, true
	}
	return "", false
}

// DeriveTopics returns the topic tags to record for a classified query:
// the category's canonical tags plus significant query words usable for
// exact-topic knowledge lookup.
func (c *Classifier) DeriveTopics(query string, cat model.Category) []string {
	var tags []string
	switch cat {
	case model.CategoryKYC:
		tags = append(tags, "KYC", "Verification")
	case model.CategoryMarketplace:
		tags = append(tags, "Marketplace")
	case model.CategoryTokenPurchase:
		tags = append(tags, "Token")
	case model.CategoryPlatformContext:
		tags = append(tags, "Platform")
		if matchAnyWord(tokenize(normalize(query)), []string{"mining", "mine", "miner", "miners"}) {
			tags = append(tags, "Mining")
		}
	case model.CategoryRealWorld:
		tags = append(tags, "RealWorld")
	default:
		tags = append(tags, "General")
	}
	for _, w := range SignificantWords(query) {
		tags = append(tags, w)
	}
	return tags
}

// SignificantWords returns the lowercased query tokens longer than three
// characters that are not stopwords, deduplicated in order.
func SignificantWords(query string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokenize(normalize(query)) {
		if len(tok) <= 3 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tokenize splits a normalized query into words, stripping punctuation.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			return false
		}
		return true
	})
}

func matchAnyWord(tokens []string, words []string) bool {
	for _, tok := range tokens {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

func matchAnySubstring(q string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

// matchRealWorld tests the query against the real-world vocabulary:
// whole-word matching for single words, substring matching for multi-word
// category phrases.
func matchRealWorld(q string, tokens []string) bool {
	for _, v := range realWorldVocabulary {
		if strings.ContainsRune(v, ' ') {
			if strings.Contains(q, v) {
				return true
			}
			continue
		}
		for _, tok := range tokens {
			if tok == v {
				return true
			}
		}
	}
	return false
}

// matchStarter returns the real-world question starter the query begins
// with, or "".
func matchStarter(q string) string {
	for _, s := range questionStarters {
		if strings.HasPrefix(q, s) {
			return s
		}
	}
	return ""
}
