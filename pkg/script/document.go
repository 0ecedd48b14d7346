package script

import (
	"sort"

	"github.com/aretw0/parley/pkg/domain"
)

// Document is the serialized form of a script.
// It uses "mapstructure" tags so YAML, JSON, TOML and front matter share one schema.
type Document struct {
	Name      string              `json:"name" mapstructure:"name"`
	Greeting  string              `json:"greeting,omitempty" mapstructure:"greeting"`
	MemoryCap int                 `json:"memory_cap,omitempty" mapstructure:"memory_cap"`
	Fallbacks []string            `json:"fallbacks" mapstructure:"fallbacks"`
	Memory    []string            `json:"memory,omitempty" mapstructure:"memory"`
	Synonyms  map[string][]string `json:"synonyms,omitempty" mapstructure:"synonyms"`
	Rules     []RuleDocument      `json:"rules" mapstructure:"rules"`

	Contractions  map[string]string `json:"contractions,omitempty" mapstructure:"contractions"`
	Substitutions map[string]string `json:"substitutions,omitempty" mapstructure:"substitutions"`
	Reflections   map[string]string `json:"reflections,omitempty" mapstructure:"reflections"`
}

// RuleDocument is the serialized form of a rule.
type RuleDocument struct {
	Keyword        string                  `json:"keyword" mapstructure:"keyword"`
	Rank           int                     `json:"rank,omitempty" mapstructure:"rank"`
	Decompositions []DecompositionDocument `json:"decompositions" mapstructure:"decompositions"`
}

// DecompositionDocument is the serialized form of a decomposition.
type DecompositionDocument struct {
	Pattern            string   `json:"pattern" mapstructure:"pattern"`
	Reassemblies       []string `json:"reassemblies" mapstructure:"reassemblies"`
	Memory             bool     `json:"memory,omitempty" mapstructure:"memory"`
	MemoryReassemblies []string `json:"memory_reassemblies,omitempty" mapstructure:"memory_reassemblies"`
}

// Script converts the document into its domain form.
// Template syntax errors are collected into a *domain.ScriptErrors.
func (d *Document) Script() (*domain.Script, error) {
	c := &converter{}

	s := &domain.Script{
		Name:            d.Name,
		Greeting:        d.Greeting,
		MemoryCap:       d.MemoryCap,
		Fallbacks:       d.Fallbacks,
		MemoryTemplates: c.templates("", -1, d.Memory),
		Contractions:    d.Contractions,
		Substitutions:   d.Substitutions,
		Reflections:     d.Reflections,
	}

	canonicals := make([]string, 0, len(d.Synonyms))
	for k := range d.Synonyms {
		canonicals = append(canonicals, k)
	}
	sort.Strings(canonicals)
	for _, k := range canonicals {
		s.Synonyms = append(s.Synonyms, domain.SynonymGroup{Canonical: k, Members: d.Synonyms[k]})
	}

	for _, r := range d.Rules {
		s.Rules = append(s.Rules, r.rule(c))
	}

	if len(c.errs) > 0 {
		return nil, &domain.ScriptErrors{Errors: c.errs}
	}
	return s, nil
}

// Rule converts a single rule document.
func (r RuleDocument) Rule() (domain.Rule, error) {
	c := &converter{}
	rule := r.rule(c)
	if len(c.errs) > 0 {
		return domain.Rule{}, &domain.ScriptErrors{Errors: c.errs}
	}
	return rule, nil
}

func (r RuleDocument) rule(c *converter) domain.Rule {
	rule := domain.Rule{Keyword: r.Keyword, Rank: r.Rank}
	for i, d := range r.Decompositions {
		rule.Decompositions = append(rule.Decompositions, domain.Decomposition{
			Pattern:            domain.ParsePattern(d.Pattern),
			Reassemblies:       c.templates(r.Keyword, i, d.Reassemblies),
			Memory:             d.Memory,
			MemoryReassemblies: c.templates(r.Keyword, i, d.MemoryReassemblies),
		})
	}
	return rule
}

// converter accumulates template syntax errors with their location.
type converter struct {
	errs []*domain.ScriptError
}

func (c *converter) templates(keyword string, pattern int, srcs []string) []domain.Template {
	if len(srcs) == 0 {
		return nil
	}
	out := make([]domain.Template, 0, len(srcs))
	for j, src := range srcs {
		t, err := domain.ParseTemplate(src)
		if err != nil {
			c.errs = append(c.errs, &domain.ScriptError{Rule: keyword, Pattern: pattern, Template: j, Reason: err.Error()})
			continue
		}
		out = append(out, t)
	}
	return out
}
