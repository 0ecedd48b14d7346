package runtime

import (
	"github.com/aretw0/parley/pkg/domain"
)

type decomposition struct {
	pattern      domain.Pattern
	reassemblies []domain.Template
	memory       bool
	memoryTpls   []domain.Template
}

type rule struct {
	keyword string
	rank    int
	decomps []decomposition
}

// Index is the compiled, read-only form of a Script.
// It can be shared by value or reference across any number of sessions.
type Index struct {
	script *domain.Script

	rules    map[string]*rule
	synonyms map[string]string          // surface word -> canonical keyword
	groups   map[string]map[string]bool // canonical -> members (canonical included)

	normalizer *Normalizer
	reflector  *Reflector
	fallbacks  []string
	memoryCap  int
}

// Compile validates the script and builds the keyword index.
// Every problem found is reported through a *domain.ScriptErrors.
func Compile(script *domain.Script) (*Index, error) {
	if script == nil {
		return nil, &domain.ScriptErrors{Errors: []*domain.ScriptError{
			{Pattern: -1, Template: -1, Reason: "script is nil"},
		}}
	}

	v := &validator{}
	ix := &Index{
		script:     script,
		rules:      make(map[string]*rule, len(script.Rules)),
		synonyms:   make(map[string]string),
		groups:     make(map[string]map[string]bool),
		normalizer: NewNormalizer(script.Contractions, script.Substitutions),
		reflector:  NewReflector(script.Reflections),
		fallbacks:  collapseRepeats(script.Fallbacks),
		memoryCap:  script.MemoryCap,
	}

	if len(ix.fallbacks) == 0 {
		v.fail("", -1, -1, "script has no fallback responses")
	}
	switch {
	case ix.memoryCap < 0:
		v.fail("", -1, -1, "memory cap must not be negative")
	case ix.memoryCap == 0:
		ix.memoryCap = domain.DefaultMemoryCap
	}

	ix.compileSynonyms(v, script.Synonyms)
	for _, r := range script.Rules {
		ix.compileRule(v, script, r)
	}
	ix.checkRedirects(v)

	if err := v.err(); err != nil {
		return nil, err
	}
	return ix, nil
}

// Script returns the source script the index was compiled from.
func (ix *Index) Script() *domain.Script {
	return ix.script
}

// Normalizer exposes the normalizer configured by the script.
func (ix *Index) Normalizer() *Normalizer {
	return ix.normalizer
}

// Reflector exposes the reflection table configured by the script.
func (ix *Index) Reflector() *Reflector {
	return ix.reflector
}

// Size returns the number of indexed rules.
func (ix *Index) Size() int {
	return len(ix.rules)
}

// MemoryCap returns the effective bound of the memory queue.
func (ix *Index) MemoryCap() int {
	return ix.memoryCap
}

// Canonical resolves a token through the synonym groups.
func (ix *Index) Canonical(token string) string {
	if c, ok := ix.synonyms[token]; ok {
		return c
	}
	return token
}

func (ix *Index) inGroup(token, group string) bool {
	return ix.groups[group][token]
}

func (ix *Index) compileSynonyms(v *validator, groups []domain.SynonymGroup) {
	for _, g := range groups {
		canonical := ix.singleToken(g.Canonical)
		if canonical == "" {
			v.fail("", -1, -1, "synonym group "+quote(g.Canonical)+" has no usable canonical keyword")
			continue
		}
		if _, dup := ix.groups[canonical]; dup {
			v.fail("", -1, -1, "synonym group "+quote(canonical)+" is defined twice")
			continue
		}
		members := map[string]bool{canonical: true}
		ix.groups[canonical] = members
		ix.claim(v, canonical, canonical)

		for _, m := range g.Members {
			word := ix.singleToken(m)
			if word == "" {
				v.fail("", -1, -1, "synonym group "+quote(canonical)+" has an empty or multi-word member "+quote(m))
				continue
			}
			members[word] = true
			ix.claim(v, word, canonical)
		}
	}
}

func (ix *Index) claim(v *validator, word, canonical string) {
	if prev, ok := ix.synonyms[word]; ok && prev != canonical {
		v.fail("", -1, -1, "word "+quote(word)+" belongs to synonym groups "+quote(prev)+" and "+quote(canonical))
		return
	}
	ix.synonyms[word] = canonical
}

func (ix *Index) compileRule(v *validator, script *domain.Script, r domain.Rule) {
	keyword := ix.singleToken(r.Keyword)
	if keyword == "" {
		v.fail(r.Keyword, -1, -1, "keyword must normalize to exactly one word")
		return
	}
	if _, dup := ix.rules[keyword]; dup {
		v.fail(keyword, -1, -1, "duplicate keyword")
		return
	}
	if len(r.Decompositions) == 0 {
		v.fail(keyword, -1, -1, "rule has no decomposition patterns")
	}

	cr := &rule{keyword: keyword, rank: r.Rank}
	for i, d := range r.Decompositions {
		cd := decomposition{
			pattern:      ix.normalizePattern(d.Pattern),
			reassemblies: d.Reassemblies,
			memory:       d.Memory,
			memoryTpls:   d.MemoryReassemblies,
		}
		if len(cd.memoryTpls) == 0 {
			cd.memoryTpls = script.MemoryTemplates
		}
		ix.checkDecomposition(v, keyword, i, cd)
		cr.decomps = append(cr.decomps, cd)
	}
	ix.rules[keyword] = cr
}

// normalizePattern runs pattern literals through the same contraction and
// substitution tables as the input, so "i'm" in a script matches "i am".
func (ix *Index) normalizePattern(p domain.Pattern) domain.Pattern {
	out := make(domain.Pattern, 0, len(p))
	for _, e := range p {
		if e.Kind != domain.ElementLiteral {
			out = append(out, e)
			continue
		}
		for _, w := range ix.normalizer.Expand(foldWord(e.Text)) {
			out = append(out, domain.Element{Kind: domain.ElementLiteral, Text: w})
		}
	}
	return out
}

func (ix *Index) singleToken(word string) string {
	tokens := ix.normalizer.Expand(foldWord(word))
	if len(tokens) != 1 {
		return ""
	}
	return tokens[0]
}
