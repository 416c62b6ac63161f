package lexicon

// DefaultStopwords returns the built-in English stopword set.
func DefaultStopwords() Set {
	return NewSet(
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours",
		"yourself", "yourselves", "he", "him", "his", "himself", "she", "her", "hers",
		"herself", "it", "its", "itself", "they", "them", "their", "theirs", "themselves",
		"what", "which", "who", "whom", "this", "that", "these", "those", "am", "is", "are",
		"was", "were", "be", "been", "being", "have", "has", "had", "having", "do", "does",
		"did", "doing", "a", "an", "the", "and", "but", "if", "or", "because", "as", "until",
		"while", "of", "at", "by", "for", "with", "through", "during", "before", "after",
		"above", "below", "up", "down", "in", "out", "on", "off", "over", "under", "again",
		"further", "then", "once",
	)
}

// DefaultProfanity returns the built-in profanity word set.
func DefaultProfanity() Set {
	return NewSet(
		"damn", "hell", "crap", "shit", "fuck", "fucking", "fucked", "bitch", "bastard",
		"asshole", "ass", "piss", "suck", "sucks", "sucked", "stupid", "idiot", "moron",
		"dumb", "hate", "terrible", "awful", "horrible", "disgusting", "pathetic",
		"worthless", "useless", "garbage", "trash", "bullshit",
	)
}

// DefaultPositive returns the built-in positive sentiment word set.
func DefaultPositive() Set {
	return NewSet(
		"excellent", "great", "amazing", "wonderful", "fantastic", "awesome", "superb",
		"outstanding", "brilliant", "perfect", "love", "loved", "loving", "good", "nice",
		"best", "better", "happy", "pleased", "satisfied", "recommend", "recommended",
		"quality", "beautiful", "impressive", "remarkable", "incredible", "phenomenal",
		"exceptional", "marvelous", "splendid", "terrific", "fabulous", "delightful",
	)
}

// DefaultNegative returns the built-in negative sentiment word set.
func DefaultNegative() Set {
	return NewSet(
		"terrible", "awful", "horrible", "bad", "worst", "hate", "hated", "hating",
		"disappointing", "disappointed", "poor", "useless", "worthless", "garbage",
		"trash", "disgusting", "pathetic", "annoying", "frustrating", "broken",
		"defective", "cheap", "overpriced", "waste", "regret", "avoid", "problems",
		"issues", "failed", "failure", "nightmare", "disaster", "mess", "sucks",
	)
}
