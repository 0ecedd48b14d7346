package runtime

import "github.com/aretw0/parley/pkg/domain"

// decompose tries the rule's patterns in order against tokens.
// The first structurally matching pattern wins.
func (ix *Index) decompose(r *rule, tokens []string) (int, [][]string, bool) {
	for i, d := range r.decomps {
		if caps, ok := ix.match(d.pattern, tokens); ok {
			return i, caps, true
		}
	}
	return -1, nil, false
}

// match reports whether the pattern covers the whole token sequence and returns
// one capture per wildcard. Wildcards take the longest span that still lets the
// rest of the pattern match and may be empty.
func (ix *Index) match(p domain.Pattern, tokens []string) ([][]string, bool) {
	caps := make([][]string, 0, p.Wildcards())
	if !ix.matchAt(p, 0, tokens, 0, &caps) {
		return nil, false
	}
	return caps, true
}

func (ix *Index) matchAt(p domain.Pattern, pi int, tokens []string, ti int, caps *[][]string) bool {
	if pi == len(p) {
		return ti == len(tokens)
	}

	e := p[pi]
	switch e.Kind {
	case domain.ElementWildcard:
		for end := len(tokens); end >= ti; end-- {
			*caps = append(*caps, tokens[ti:end])
			if ix.matchAt(p, pi+1, tokens, end, caps) {
				return true
			}
			*caps = (*caps)[:len(*caps)-1]
		}
		return false
	case domain.ElementGroup:
		if ti < len(tokens) && ix.inGroup(tokens[ti], e.Text) {
			return ix.matchAt(p, pi+1, tokens, ti+1, caps)
		}
		return false
	default:
		if ti < len(tokens) && tokens[ti] == e.Text {
			return ix.matchAt(p, pi+1, tokens, ti+1, caps)
		}
		return false
	}
}
