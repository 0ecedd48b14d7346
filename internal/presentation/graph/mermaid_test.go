package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScript(t *testing.T) *domain.Script {
	t.Helper()
	b := dsl.New("graph").
		Fallbacks("Go on.").
		Synonyms("family", "mother", "father")
	b.Rule("what", 0).Pattern("*", "Why do you ask?").
		Rule("how", 0).Pattern("*", "=what").
		Rule("my", 2).
		Pattern("* my @family *", "Tell me more about your family.").
		Pattern("* my *", "Your {1}?")

	s, err := b.Script()
	require.NoError(t, err)
	return s
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(testScript(t), nil)

	for _, want := range []string{
		"graph TD\n",
		`kw_what["what <br/> rank 0"]`,
		`kw_my["my <br/> rank 2"]`,
		`group_kw_family(("@family"))`,
		`kw_how -- "=what" --> kw_what`,
		`group_kw_family -. "@family" .-> kw_my`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	sess := domain.NewSession("s")
	sess.Usage[domain.UsageKey("my", 1)] = 1
	sess.Usage[domain.MemoryUsageKey("my", 1)] = 1
	sess.Usage[domain.UsageKey("what", 0)] = 2

	overlay := graph.OverlayFromSession(sess, "what")
	assert.Equal(t, []string{"my", "what"}, overlay.Visited)

	out := graph.GenerateMermaid(testScript(t), overlay)
	assert.Contains(t, out, "class kw_my visited;")
	assert.Contains(t, out, "class kw_what visited;")
	assert.Contains(t, out, "class kw_what current;")
	assert.Equal(t, 1, strings.Count(out, "class kw_my visited;"))
}

func TestGenerateMermaid_SanitizesIDs(t *testing.T) {
	s := &domain.Script{Rules: []domain.Rule{{Keyword: "can't"}, {Keyword: "end"}}}
	out := graph.GenerateMermaid(s, nil)
	assert.Contains(t, out, `kw_canu27t["can't <br/> rank 0"]`)
	assert.Contains(t, out, `kw_end["end <br/> rank 0"]`)
}
