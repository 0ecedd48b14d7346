package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Overlay contains session data to visualize on the graph.
type Overlay struct {
	// Visited lists keywords whose rules have answered at least once.
	Visited []string
	// Current is the keyword that produced the latest reply.
	Current string
}

// OverlayFromSession marks every keyword with a rotation counter in sess as visited.
func OverlayFromSession(sess *domain.Session, current string) *Overlay {
	seen := make(map[string]bool)
	for key := range sess.Usage {
		kw, _, _ := strings.Cut(key, "#")
		seen[kw] = true
	}
	o := &Overlay{Current: current}
	for kw := range seen {
		o.Visited = append(o.Visited, kw)
	}
	sort.Strings(o.Visited)
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the script's rules.
// Shapes:
// - Rule: [Rectangle] labelled with keyword and rank
// - Synonym group: ((Circle))
// Edges:
// - Redirect template: solid arrow labelled "=target"
// - Group literal in a pattern: dotted arrow from the group to the rule
func GenerateMermaid(script *domain.Script, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	rules := make(map[string]bool, len(script.Rules))
	for _, r := range script.Rules {
		rules[r.Keyword] = true
	}

	for _, g := range script.Synonyms {
		if rules[g.Canonical] {
			continue
		}
		fmt.Fprintf(&sb, "    %s((\"@%s\"))\n", groupID(g.Canonical), escape(g.Canonical))
	}

	for _, r := range script.Rules {
		safeID := sanitizeMermaidID(r.Keyword)
		fmt.Fprintf(&sb, "    %s[\"%s <br/> rank %d\"]\n", safeID, escape(r.Keyword), r.Rank)

		redirects := make(map[string]bool)
		groups := make(map[string]bool)
		for _, d := range r.Decompositions {
			for _, e := range d.Pattern {
				if e.Kind == domain.ElementGroup {
					groups[e.Text] = true
				}
			}
			for _, t := range d.Reassemblies {
				if t.IsRedirect() {
					redirects[t.Redirect] = true
				}
			}
		}

		for _, target := range sortedKeys(redirects) {
			fmt.Fprintf(&sb, "    %s -- \"=%s\" --> %s\n", safeID, escape(target), sanitizeMermaidID(target))
		}
		for _, g := range sortedKeys(groups) {
			from := groupID(g)
			if rules[g] {
				from = sanitizeMermaidID(g)
			}
			if from == safeID {
				continue
			}
			fmt.Fprintf(&sb, "    %s -. \"@%s\" .-> %s\n", from, escape(g), safeID)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, kw := range overlay.Visited {
			safeID := sanitizeMermaidID(kw)
			if !visitedSet[safeID] && safeID != "" && rules[kw] {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.Current != "" && rules[overlay.Current] {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func groupID(canonical string) string {
	return "group_" + sanitizeMermaidID(canonical)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// sanitizeMermaidID keeps letters, digits and underscores. Mermaid reserves "end".
func sanitizeMermaidID(id string) string {
	var b strings.Builder
	b.WriteString("kw_")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteString(fmt.Sprintf("u%x", r))
		}
	}
	return b.String()
}
