package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Rule binds a trigger keyword to an ordered list of decompositions.
// Rules are created at script-load time and never mutated afterwards.
type Rule struct {
	Keyword        string          `json:"keyword" yaml:"keyword"`
	Rank           int             `json:"rank" yaml:"rank"`
	Decompositions []Decomposition `json:"decompositions" yaml:"decompositions"`
}

// Decomposition is one pattern of a Rule together with the templates used to answer it.
type Decomposition struct {
	Pattern      Pattern    `json:"pattern" yaml:"pattern"`
	Reassemblies []Template `json:"reassemblies" yaml:"reassemblies"`

	// Memory marks the decomposition as memory-worthy: a statement built from
	// MemoryReassemblies (or the script defaults) is queued for a later turn.
	Memory             bool       `json:"memory,omitempty" yaml:"memory,omitempty"`
	MemoryReassemblies []Template `json:"memory_reassemblies,omitempty" yaml:"memory_reassemblies,omitempty"`
}

// ElementKind distinguishes the building blocks of a Pattern.
type ElementKind int

const (
	// ElementLiteral matches exactly one identical token.
	ElementLiteral ElementKind = iota
	// ElementWildcard captures a (possibly empty) run of tokens.
	ElementWildcard
	// ElementGroup matches one token belonging to the named synonym group.
	ElementGroup
)

// Element is a single position of a decomposition Pattern.
type Element struct {
	Kind ElementKind
	Text string
}

// Pattern is an ordered sequence of literal tokens, synonym-group references and wildcards.
// Its script form is whitespace separated: "* i am *", "* @family *".
type Pattern []Element

// ParsePattern converts the script form of a pattern into its elements.
func ParsePattern(src string) Pattern {
	fields := strings.Fields(strings.ToLower(src))
	p := make(Pattern, 0, len(fields))
	for _, f := range fields {
		switch {
		case f == "*":
			p = append(p, Element{Kind: ElementWildcard})
		case len(f) > 1 && f[0] == '@':
			p = append(p, Element{Kind: ElementGroup, Text: f[1:]})
		default:
			p = append(p, Element{Kind: ElementLiteral, Text: f})
		}
	}
	return p
}

// Wildcards returns the number of capture slots in the pattern.
func (p Pattern) Wildcards() int {
	n := 0
	for _, e := range p {
		if e.Kind == ElementWildcard {
			n++
		}
	}
	return n
}

func (p Pattern) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		switch e.Kind {
		case ElementWildcard:
			parts[i] = "*"
		case ElementGroup:
			parts[i] = "@" + e.Text
		default:
			parts[i] = e.Text
		}
	}
	return strings.Join(parts, " ")
}

// MarshalText implements encoding.TextMarshaler.
func (p Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pattern) UnmarshalText(text []byte) error {
	*p = ParsePattern(string(text))
	return nil
}

// Part is a fragment of a Template: literal text, or a reference to a capture.
type Part struct {
	Text    string
	Capture int // -1 for literal parts
}

// Template is a parsed reassembly string.
// Placeholders are written {N}, N being the 0-based capture index.
// A template of the form "=keyword" redirects the turn to another rule.
type Template struct {
	Parts    []Part
	Redirect string

	source string
}

// ParseTemplate parses the script form of a reassembly template.
func ParseTemplate(src string) (Template, error) {
	src = strings.TrimSpace(src)
	t := Template{source: src}

	if strings.HasPrefix(src, "=") {
		target := strings.ToLower(strings.TrimSpace(src[1:]))
		if target == "" || strings.ContainsAny(target, " \t") {
			return t, fmt.Errorf("invalid redirect %q", src)
		}
		t.Redirect = target
		return t, nil
	}

	rest := src
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			t.Parts = append(t.Parts, Part{Text: rest, Capture: -1})
			break
		}
		if open > 0 {
			t.Parts = append(t.Parts, Part{Text: rest[:open], Capture: -1})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return t, fmt.Errorf("unclosed placeholder in %q", src)
		}
		idx, err := strconv.Atoi(rest[open+1 : open+end])
		if err != nil || idx < 0 {
			return t, fmt.Errorf("invalid placeholder %q in %q", rest[open:open+end+1], src)
		}
		t.Parts = append(t.Parts, Part{Capture: idx})
		rest = rest[open+end+1:]
	}
	return t, nil
}

// MustTemplate is like ParseTemplate but panics on error. Intended for static tables and tests.
func MustTemplate(src string) Template {
	t, err := ParseTemplate(src)
	if err != nil {
		panic(err)
	}
	return t
}

// Templates parses a list of template strings.
func Templates(srcs ...string) ([]Template, error) {
	out := make([]Template, 0, len(srcs))
	for _, s := range srcs {
		t, err := ParseTemplate(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// MaxCapture returns the highest capture index referenced, or -1 if none.
func (t Template) MaxCapture() int {
	hi := -1
	for _, p := range t.Parts {
		if p.Capture > hi {
			hi = p.Capture
		}
	}
	return hi
}

// IsRedirect reports whether the template delegates to another rule.
func (t Template) IsRedirect() bool {
	return t.Redirect != ""
}

func (t Template) String() string {
	return t.source
}

// MarshalText implements encoding.TextMarshaler.
func (t Template) MarshalText() ([]byte, error) {
	return []byte(t.source), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Template) UnmarshalText(text []byte) error {
	parsed, err := ParseTemplate(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
