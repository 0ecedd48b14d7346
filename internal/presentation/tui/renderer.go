package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// ScriptMarkdown summarizes a script as a markdown document.
func ScriptMarkdown(s *domain.Script) string {
	var sb strings.Builder
	name := s.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if s.Greeting != "" {
		fmt.Fprintf(&sb, "> %s\n\n", s.Greeting)
	}

	rules := append([]domain.Rule(nil), s.Rules...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Rank > rules[j].Rank })

	sb.WriteString("## Rules\n\n")
	sb.WriteString("| Keyword | Rank | Patterns | Memory |\n")
	sb.WriteString("|---|---:|---|:---:|\n")
	for _, r := range rules {
		patterns := make([]string, len(r.Decompositions))
		memory := ""
		for i, d := range r.Decompositions {
			patterns[i] = "`" + d.Pattern.String() + "`"
			if d.Memory {
				memory = "yes"
			}
		}
		fmt.Fprintf(&sb, "| %s | %d | %s | %s |\n", r.Keyword, r.Rank, strings.Join(patterns, "<br>"), memory)
	}

	if len(s.Synonyms) > 0 {
		sb.WriteString("\n## Synonyms\n\n")
		for _, g := range s.Synonyms {
			fmt.Fprintf(&sb, "- **%s**: %s\n", g.Canonical, strings.Join(g.Members, ", "))
		}
	}

	fmt.Fprintf(&sb, "\n## Fallbacks\n\n")
	for _, f := range s.Fallbacks {
		fmt.Fprintf(&sb, "- %s\n", f)
	}
	return sb.String()
}
