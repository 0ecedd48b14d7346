package runtime

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// DefaultContractions expands the common English contractions before matching.
var DefaultContractions = map[string]string{
	"don't":     "do not",
	"doesn't":   "does not",
	"didn't":    "did not",
	"can't":     "can not",
	"cannot":    "can not",
	"won't":     "will not",
	"wouldn't":  "would not",
	"shouldn't": "should not",
	"couldn't":  "could not",
	"isn't":     "is not",
	"aren't":    "are not",
	"wasn't":    "was not",
	"weren't":   "were not",
	"haven't":   "have not",
	"hasn't":    "has not",
	"i'm":       "i am",
	"you're":    "you are",
	"we're":     "we are",
	"they're":   "they are",
	"it's":      "it is",
	"that's":    "that is",
	"what's":    "what is",
	"i've":      "i have",
	"you've":    "you have",
	"i'll":      "i will",
	"you'll":    "you will",
	"i'd":       "i would",
	"you'd":     "you would",
	"let's":     "let us",
}

// Normalizer turns raw utterances into clauses of tokens.
// It is immutable after construction.
type Normalizer struct {
	contractions  map[string]string
	substitutions map[string]string
}

// NewNormalizer builds a normalizer. A nil contractions table selects DefaultContractions.
func NewNormalizer(contractions, substitutions map[string]string) *Normalizer {
	if contractions == nil {
		contractions = DefaultContractions
	}
	n := &Normalizer{
		contractions:  make(map[string]string, len(contractions)),
		substitutions: make(map[string]string, len(substitutions)),
	}
	for k, v := range contractions {
		n.contractions[foldWord(k)] = strings.ToLower(v)
	}
	for k, v := range substitutions {
		n.substitutions[foldWord(k)] = strings.ToLower(v)
	}
	return n
}

// Normalize case-folds the input, splits it into clauses at sentence punctuation
// and expands contractions and word substitutions. Empty clauses are dropped.
func (n *Normalizer) Normalize(input string) [][]string {
	text := foldWord(input)

	var (
		clauses [][]string
		clause  []string
		word    strings.Builder
	)
	flushWord := func() {
		if word.Len() == 0 {
			return
		}
		clause = append(clause, n.Expand(word.String())...)
		word.Reset()
	}
	flushClause := func() {
		flushWord()
		if len(clause) > 0 {
			clauses = append(clauses, clause)
		}
		clause = nil
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			word.WriteRune(r)
		case isClauseBoundary(r):
			flushClause()
		default:
			flushWord()
		}
	}
	flushClause()

	return clauses
}

// Tokens normalizes the input and flattens the clauses into one token sequence.
func (n *Normalizer) Tokens(input string) []string {
	var out []string
	for _, c := range n.Normalize(input) {
		out = append(out, c...)
	}
	return out
}

// Expand applies the contraction and substitution tables to a single word.
// It may return zero, one or several tokens.
func (n *Normalizer) Expand(word string) []string {
	word = strings.Trim(word, "'")
	if word == "" {
		return nil
	}
	if exp, ok := n.contractions[word]; ok {
		word = exp
	}

	var out []string
	for _, w := range strings.Fields(word) {
		if sub, ok := n.substitutions[w]; ok {
			out = append(out, strings.Fields(sub)...)
			continue
		}
		out = append(out, w)
	}
	return out
}

func foldWord(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return strings.NewReplacer("’", "'", "‘", "'", "`", "'").Replace(s)
}

func isClauseBoundary(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?':
		return true
	}
	return false
}
