package runtime

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/aretw0/parley/pkg/domain"
)

// validator accumulates script problems so a single load reports all of them.
type validator struct {
	errs []*domain.ScriptError
}

func (v *validator) fail(keyword string, pattern, template int, reason string) {
	v.errs = append(v.errs, &domain.ScriptError{
		Rule:     keyword,
		Pattern:  pattern,
		Template: template,
		Reason:   reason,
	})
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &domain.ScriptErrors{Errors: v.errs}
}

func (ix *Index) checkDecomposition(v *validator, keyword string, i int, d decomposition) {
	if len(d.pattern) == 0 {
		v.fail(keyword, i, -1, "empty decomposition pattern")
	}
	for _, e := range d.pattern {
		if e.Kind == domain.ElementGroup {
			if _, ok := ix.groups[e.Text]; !ok {
				v.fail(keyword, i, -1, "pattern references unknown synonym group "+quote(e.Text))
			}
		}
	}

	wildcards := d.pattern.Wildcards()
	if len(d.reassemblies) == 0 {
		v.fail(keyword, i, -1, "pattern has no reassembly templates")
	}
	for j, t := range d.reassemblies {
		if hi := t.MaxCapture(); hi >= wildcards {
			v.fail(keyword, i, j, fmt.Sprintf("placeholder {%d} has no corresponding wildcard (pattern has %d)", hi, wildcards))
		}
	}

	if !d.memory {
		return
	}
	if len(d.memoryTpls) == 0 {
		v.fail(keyword, i, -1, "memory pattern has no memory templates")
	}
	for j, t := range d.memoryTpls {
		if t.IsRedirect() {
			v.fail(keyword, i, j, "memory template cannot redirect")
		}
		if hi := t.MaxCapture(); hi >= wildcards {
			v.fail(keyword, i, j, fmt.Sprintf("memory placeholder {%d} has no corresponding wildcard (pattern has %d)", hi, wildcards))
		}
	}
}

// checkRedirects runs once every rule is indexed.
func (ix *Index) checkRedirects(v *validator) {
	keywords := make([]string, 0, len(ix.rules))
	for k := range ix.rules {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)

	for _, k := range keywords {
		if c := ix.Canonical(k); c != k {
			v.fail(k, -1, -1, "keyword is a member of synonym group "+quote(c)+" and can never be selected")
		}
		for i, d := range ix.rules[k].decomps {
			for j, t := range d.reassemblies {
				if t.IsRedirect() {
					if _, ok := ix.rules[t.Redirect]; !ok {
						v.fail(k, i, j, "redirect to unknown keyword "+quote(t.Redirect))
					}
				}
			}
		}
	}
}

func quote(s string) string {
	return strconv.Quote(s)
}
