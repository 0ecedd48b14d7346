package runtime

import "github.com/aretw0/parley/pkg/domain"

// fallback returns the next generic response and advances the session rotation.
func (ix *Index) fallback(sess *domain.Session) string {
	n := len(ix.fallbacks)
	i := sess.Fallback % n
	if i < 0 {
		i += n
	}
	sess.Fallback = (i + 1) % n
	return ix.fallbacks[i]
}

// collapseRepeats drops entries equal to their cyclic predecessor, so a round-robin
// over the result never yields the same text twice in a row unless every entry is equal.
func collapseRepeats(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if len(out) > 0 && out[len(out)-1] == s {
			continue
		}
		out = append(out, s)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
