package dsl

import "github.com/aretw0/parley/pkg/domain"

// RuleBuilder provides a fluent API for configuring a rule.
type RuleBuilder struct {
	rule    domain.Rule
	builder *Builder
}

// Pattern appends a decomposition with its reassembly templates.
func (r *RuleBuilder) Pattern(pattern string, templates ...string) *RuleBuilder {
	r.rule.Decompositions = append(r.rule.Decompositions, domain.Decomposition{
		Pattern:      domain.ParsePattern(pattern),
		Reassemblies: r.builder.parse(templates),
	})
	return r
}

// Remember flags the last pattern as memory-worthy. Without templates the
// script-wide memory templates are used.
func (r *RuleBuilder) Remember(templates ...string) *RuleBuilder {
	n := len(r.rule.Decompositions)
	if n == 0 {
		return r
	}
	d := &r.rule.Decompositions[n-1]
	d.Memory = true
	d.MemoryReassemblies = append(d.MemoryReassemblies, r.builder.parse(templates)...)
	return r
}

// Rule starts the next rule on the parent builder.
func (r *RuleBuilder) Rule(keyword string, rank int) *RuleBuilder {
	return r.builder.Rule(keyword, rank)
}
