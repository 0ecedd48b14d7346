package loam

import "github.com/aretw0/parley/pkg/script"

// Metadata is the front matter of a document in a script directory.
// A document with a keyword describes one rule; the single document without
// one carries the script-wide settings.
type Metadata struct {
	// Rule documents
	Keyword        string                         `json:"keyword" mapstructure:"keyword"`
	Rank           int                            `json:"rank" mapstructure:"rank"`
	Decompositions []script.DecompositionDocument `json:"decompositions" mapstructure:"decompositions"`

	// Settings document
	Name          string                `json:"name" mapstructure:"name"`
	Greeting      string                `json:"greeting" mapstructure:"greeting"`
	MemoryCap     int                   `json:"memory_cap" mapstructure:"memory_cap"`
	Fallbacks     []string              `json:"fallbacks" mapstructure:"fallbacks"`
	Memory        []string              `json:"memory" mapstructure:"memory"`
	Synonyms      map[string][]string   `json:"synonyms" mapstructure:"synonyms"`
	Rules         []script.RuleDocument `json:"rules" mapstructure:"rules"`
	Contractions  map[string]string     `json:"contractions" mapstructure:"contractions"`
	Substitutions map[string]string     `json:"substitutions" mapstructure:"substitutions"`
	Reflections   map[string]string     `json:"reflections" mapstructure:"reflections"`
}

// IsRule reports whether the document describes a rule.
func (m Metadata) IsRule() bool {
	return m.Keyword != ""
}

func (m Metadata) rule() script.RuleDocument {
	return script.RuleDocument{Keyword: m.Keyword, Rank: m.Rank, Decompositions: m.Decompositions}
}

func (m Metadata) settings() script.Document {
	return script.Document{
		Name:          m.Name,
		Greeting:      m.Greeting,
		MemoryCap:     m.MemoryCap,
		Fallbacks:     m.Fallbacks,
		Memory:        m.Memory,
		Synonyms:      m.Synonyms,
		Rules:         m.Rules,
		Contractions:  m.Contractions,
		Substitutions: m.Substitutions,
		Reflections:   m.Reflections,
	}
}
