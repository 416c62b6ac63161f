// Package lexicon provides the pure word-level building blocks for the
// pipeline stages: tokenization with stopword removal, profanity lookup,
// and polarity scoring. Everything here is deterministic and free of side
// effects, so stages built on it classify reproducibly.
package lexicon

import "strings"

// Set is a membership set of lowercase words.
type Set map[string]struct{}

// NewSet builds a Set from the given words, lowercasing each.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Contains reports whether the lowercase form of word is in the set.
func (s Set) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// Tokenizer normalizes free text into a token sequence: lowercase, letters
// only, stopwords removed, tokens of length <= 2 dropped.
type Tokenizer struct {
	stopwords Set
}

// NewTokenizer creates a tokenizer using the given stopword set. A nil set
// disables stopword removal.
func NewTokenizer(stopwords Set) *Tokenizer {
	return &Tokenizer{stopwords: stopwords}
}

// Tokenize splits text into normalized tokens. The result is nil for text
// that yields no tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := SplitWords(text)
	var tokens []string
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		if t.stopwords != nil && t.stopwords.Contains(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Clean joins tokens back into a single cleaned string.
func Clean(tokens []string) string {
	return strings.Join(tokens, " ")
}

// SplitWords lowercases text and splits it on every non-letter rune,
// discarding empty segments. Unlike Tokenize it keeps stopwords and short
// words, which profanity scanning needs.
func SplitWords(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}

// Scorer computes a polarity score over a token sequence from positive and
// negative word sets.
type Scorer struct {
	positive Set
	negative Set
}

// NewScorer creates a polarity scorer from the given word sets.
func NewScorer(positive, negative Set) *Scorer {
	return &Scorer{positive: positive, negative: negative}
}

// Score returns (positive - negative) / (positive + negative) over the
// tokens, along with the number of sentiment-bearing tokens found. A hit
// count of zero means the text carried no sentiment signal and the score
// is zero.
func (s *Scorer) Score(tokens []string) (score float64, hits int) {
	var pos, neg int
	for _, tok := range tokens {
		if s.positive.Contains(tok) {
			pos++
		} else if s.negative.Contains(tok) {
			neg++
		}
	}
	hits = pos + neg
	if hits == 0 {
		return 0, 0
	}
	return float64(pos-neg) / float64(hits), hits
}
