package classify

// Keyword and phrase vocabularies for the classification cascade. Single
// words match whole tokens; phrases match as substrings of the normalized
// query.

var kycKeywords = []string{
	"kyc", "verification", "verify", "verified", "identity", "identification",
	"passport", "document", "documents", "selfie",
}

var kycPhrases = []string{
	"id card", "driver's license", "drivers license", "proof of address",
	"verify my identity", "get verified", "upload my passport",
	"verification status", "identity check",
}

var tokenWords = []string{"token", "tokens", "coin", "coins"}

var purchaseWords = []string{"buy", "purchase", "purchasing", "price", "cost", "acquire", "pay"}

var marketplaceKeywords = []string{
	"sell", "selling", "listing", "listings", "marketplace", "recommend",
	"recommendation", "recommendations", "shop", "store", "product", "products",
	"item", "items", "order", "orders",
}

var marketplacePhrases = []string{
	"for sale", "what can i buy", "browse categories",
}

var platformContextKeywords = []string{
	"mining", "mine", "miner", "miners", "token", "tokens", "balance", "wallet", "status",
	"statistics", "stats", "earnings", "rewards", "level", "rank",
}

var platformContextPhrases = []string{
	"how many", "my account", "token price", "mining speed", "on the platform",
}

// platformVetoWords are whole-word platform terms that reject a real-world
// classification regardless of other signals.
var platformVetoWords = []string{
	"mining", "mine", "miner", "miners", "token", "tokens", "kyc", "wallet",
	"balance", "marketplace", "listing", "listings", "earnings", "rewards",
	"platform", "account",
}

// platformVetoPhrases are substring platform phrases with the same veto
// effect.
var platformVetoPhrases = []string{
	"my account", "my balance", "my stats", "token price", "mining speed",
	"on the platform",
}

// realWorldVocabulary covers the outside-world domains users ask about.
// Single words match whole tokens, multi-word entries match as substrings.
var realWorldVocabulary = []string{
	// science
	"science", "physics", "chemistry", "biology", "astronomy", "geology",
	"gravity", "evolution", "photosynthesis", "molecule", "atom", "planet",
	"water", "boiling point", "speed of light", "periodic table", "solar system",
	// health
	"health", "medicine", "disease", "vitamin", "exercise", "nutrition",
	"calories", "sleep", "blood pressure",
	// humanities
	"history", "geography", "philosophy", "literature", "language", "religion",
	"art", "music", "world war", "ancient rome", "capital of",
	// business & economics
	"economics", "inflation", "gdp", "stock market", "interest rate",
	"supply and demand", "compound interest",
	// technology (general, not platform)
	"computer", "internet", "algorithm", "electricity", "artificial intelligence",
	"machine learning", "programming language",
	// sports & leisure
	"sports", "football", "soccer", "basketball", "tennis", "olympics",
	"marathon", "chess",
	// everyday
	"recipe", "cooking", "weather", "animal", "animals", "population",
	"distance", "temperature",
}

// questionStarters are real-world interrogative openings for the
// question-starter heuristic.
var questionStarters = []string{
	"what is", "what are", "what was", "what were",
	"how does", "how do", "how did", "how is", "how are",
	"why is", "why are", "why do", "why does", "why did",
	"who is", "who was", "who are", "who invented", "who discovered",
	"when did", "when was", "when is",
	"where is", "where are", "where was",
	"compare", "explain", "define", "difference between", "tell me about",
}

// stopwords are function words excluded from significant-word extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "that": true, "this": true, "with": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"have": true, "does": true, "how": true, "why": true, "who": true,
	"can": true, "could": true, "should": true, "would": true, "about": true,
	"from": true, "your": true, "you": true, "are": true, "was": true,
	"were": true, "there": true, "their": true, "them": true, "then": true,
	"than": true, "into": true, "for": true, "much": true, "many": true,
	"more": true, "most": true, "some": true, "will": true, "is": true,
	"it": true, "of": true, "to": true, "in": true, "on": true, "a": true,
	"an": true, "do": true, "did": true, "i": true, "my": true, "me": true,
	"please": true, "tell": true,
}
