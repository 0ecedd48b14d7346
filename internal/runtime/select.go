package runtime

import "sort"

// candidate is a rule whose keyword occurs in the input.
type candidate struct {
	rule     *rule
	position int // index of the keyword's first occurrence in the flattened tokens
}

// selectKeywords returns every applicable rule, highest rank first and, on rank
// ties, earliest first occurrence first. An empty result is the no-match outcome.
func (ix *Index) selectKeywords(tokens []string) []candidate {
	seen := make(map[string]bool)
	var out []candidate

	for pos, tok := range tokens {
		kw := ix.Canonical(tok)
		if seen[kw] {
			continue
		}
		r, ok := ix.rules[kw]
		if !ok {
			continue
		}
		seen[kw] = true
		out = append(out, candidate{rule: r, position: pos})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].rule.rank != out[j].rule.rank {
			return out[i].rule.rank > out[j].rule.rank
		}
		return out[i].position < out[j].position
	})
	return out
}

// Keywords returns the canonical keywords found in tokens in selection order.
func (ix *Index) Keywords(tokens []string) []string {
	cands := ix.selectKeywords(tokens)
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.rule.keyword
	}
	return out
}
