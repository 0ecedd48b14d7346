package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
)

// Builder manages the script construction.
type Builder struct {
	script domain.Script
	rules  []*RuleBuilder
	errs   []error
}

// New creates a new script builder.
func New(name string) *Builder {
	return &Builder{script: domain.Script{Name: name}}
}

// Greeting sets the opening line of a conversation.
func (b *Builder) Greeting(text string) *Builder {
	b.script.Greeting = text
	return b
}

// Fallbacks appends generic responses used when nothing matches.
func (b *Builder) Fallbacks(texts ...string) *Builder {
	b.script.Fallbacks = append(b.script.Fallbacks, texts...)
	return b
}

// Synonyms registers a synonym group.
func (b *Builder) Synonyms(canonical string, members ...string) *Builder {
	b.script.Synonyms = append(b.script.Synonyms, domain.SynonymGroup{Canonical: canonical, Members: members})
	return b
}

// MemoryTemplates sets the script-wide memory templates.
func (b *Builder) MemoryTemplates(templates ...string) *Builder {
	b.script.MemoryTemplates = append(b.script.MemoryTemplates, b.parse(templates)...)
	return b
}

// MemoryCap bounds the memory queue.
func (b *Builder) MemoryCap(n int) *Builder {
	b.script.MemoryCap = n
	return b
}

// Substitute adds a word substitution applied during normalization.
func (b *Builder) Substitute(from, to string) *Builder {
	if b.script.Substitutions == nil {
		b.script.Substitutions = make(map[string]string)
	}
	b.script.Substitutions[from] = to
	return b
}

// Rule starts a new rule. Calling Rule twice with the same keyword yields two
// rules, which the compiler reports as a duplicate.
func (b *Builder) Rule(keyword string, rank int) *RuleBuilder {
	rb := &RuleBuilder{rule: domain.Rule{Keyword: keyword, Rank: rank}, builder: b}
	b.rules = append(b.rules, rb)
	return rb
}

// Script returns the assembled script. It reports template syntax errors only;
// semantic validation happens when the script is compiled.
func (b *Builder) Script() (*domain.Script, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("failed to build script %q: %w", b.script.Name, errors.Join(b.errs...))
	}
	s := b.script
	s.Rules = make([]domain.Rule, 0, len(b.rules))
	for _, rb := range b.rules {
		s.Rules = append(s.Rules, rb.rule)
	}
	return &s, nil
}

// Build compiles the script into a memory Loader.
func (b *Builder) Build() (*memory.Loader, error) {
	s, err := b.Script()
	if err != nil {
		return nil, err
	}
	return memory.NewLoader(s), nil
}

func (b *Builder) parse(srcs []string) []domain.Template {
	out := make([]domain.Template, 0, len(srcs))
	for _, src := range srcs {
		t, err := domain.ParseTemplate(src)
		if err != nil {
			b.errs = append(b.errs, err)
			continue
		}
		out = append(out, t)
	}
	return out
}
