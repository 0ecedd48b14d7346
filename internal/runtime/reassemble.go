package runtime

import (
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

var punctuationSpacing = strings.NewReplacer(
	" .", ".",
	" ,", ",",
	" ;", ";",
	" :", ":",
	" !", "!",
	" ?", "?",
)

// turn stages the session mutations of a single Respond call.
// Nothing reaches the session until commit. Memory statements and their
// counters survive drop; response counters do not.
type turn struct {
	sess       *domain.Session
	usage      map[string]int
	memUsage   map[string]int
	remembered []string
}

func newTurn(sess *domain.Session) *turn {
	return &turn{sess: sess, usage: make(map[string]int), memUsage: make(map[string]int)}
}

// pick selects the template at the current rotation position for key and
// stages the advanced counter.
func (t *turn) pick(key string, tpls []domain.Template, memory bool) (int, domain.Template) {
	staged := t.usage
	if memory {
		staged = t.memUsage
	}
	n, ok := staged[key]
	if !ok {
		n = t.sess.Usage[key]
	}
	i := n % len(tpls)
	if i < 0 {
		i += len(tpls)
	}
	staged[key] = (i + 1) % len(tpls)
	return i, tpls[i]
}

// drop discards the response counters staged by a candidate that produced no reply.
func (t *turn) drop() {
	clear(t.usage)
}

func (t *turn) commit(limit int) {
	for k, v := range t.memUsage {
		t.sess.Usage[k] = v
	}
	for k, v := range t.usage {
		t.sess.Usage[k] = v
	}
	for _, s := range t.remembered {
		pushMemory(t.sess, s, limit)
	}
}

// fill substitutes reflected captures into the template.
func fill(tpl domain.Template, captures []string) (string, int, bool) {
	var b strings.Builder
	for _, p := range tpl.Parts {
		if p.Capture < 0 {
			b.WriteString(p.Text)
			continue
		}
		if p.Capture >= len(captures) {
			return "", p.Capture, false
		}
		b.WriteString(captures[p.Capture])
	}
	return tidy(b.String()), -1, true
}

// tidy collapses whitespace left by empty captures and glues punctuation back
// onto the preceding word.
func tidy(s string) string {
	return punctuationSpacing.Replace(strings.Join(strings.Fields(s), " "))
}

// reassemble fills the template chosen for (keyword, pattern) by the session rotation.
func (ix *Index) reassemble(t *turn, keyword string, pattern int, tpls []domain.Template, key string, memory bool, captures []string) (string, int, domain.Template, error) {
	j, tpl := t.pick(key, tpls, memory)
	if tpl.IsRedirect() {
		return "", j, tpl, nil
	}
	text, bad, ok := fill(tpl, captures)
	if !ok {
		return "", j, tpl, &domain.ConfigurationError{
			Keyword:  keyword,
			Pattern:  pattern,
			Template: j,
			Index:    bad,
			Captures: len(captures),
		}
	}
	return text, j, tpl, nil
}

func (ix *Index) reflectCaptures(caps [][]string) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = strings.Join(ix.reflector.Reflect(c), " ")
	}
	return out
}
