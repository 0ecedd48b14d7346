package domain

// DefaultMemoryCap bounds the memory queue when a script does not set one.
const DefaultMemoryCap = 5

// SynonymGroup maps alternate surface words onto one canonical keyword.
// A surface word belongs to at most one group.
type SynonymGroup struct {
	Canonical string   `json:"canonical" yaml:"canonical"`
	Members   []string `json:"members" yaml:"members"`
}

// Script is the complete rule table served by an engine.
// It is read-only once loaded and may be shared by any number of sessions.
type Script struct {
	Name     string `json:"name" yaml:"name"`
	Greeting string `json:"greeting,omitempty" yaml:"greeting,omitempty"`

	Rules     []Rule         `json:"rules" yaml:"rules"`
	Synonyms  []SynonymGroup `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Fallbacks []string       `json:"fallbacks" yaml:"fallbacks"`

	// MemoryTemplates are used for memory-flagged decompositions without their own set.
	MemoryTemplates []Template `json:"memory_templates,omitempty" yaml:"memory_templates,omitempty"`
	MemoryCap       int        `json:"memory_cap,omitempty" yaml:"memory_cap,omitempty"`

	// Optional overrides of the normalizer and reflection tables.
	// Nil maps fall back to the engine defaults.
	Contractions  map[string]string `json:"contractions,omitempty" yaml:"contractions,omitempty"`
	Substitutions map[string]string `json:"substitutions,omitempty" yaml:"substitutions,omitempty"`
	Reflections   map[string]string `json:"reflections,omitempty" yaml:"reflections,omitempty"`
}

// Rule returns the rule registered for keyword, if any.
func (s *Script) Rule(keyword string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Keyword == keyword {
			return r, true
		}
	}
	return Rule{}, false
}
