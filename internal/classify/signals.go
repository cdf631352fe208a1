package classify

// HasPlatformSignal reports whether the query contains platform vocabulary,
// by whole-word term or substring phrase. This is the same signal the
// real-world veto uses.
func HasPlatformSignal(query string) bool {
	q := normalize(query)
	return matchAnyWord(tokenize(q), platformVetoWords) || matchAnySubstring(q, platformVetoPhrases)
}

// HasRealWorldSignal reports whether the query matches the real-world
// category vocabulary.
func HasRealWorldSignal(query string) bool {
	q := normalize(query)
	return matchRealWorld(q, tokenize(q))
}
