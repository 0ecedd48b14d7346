package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptMarkdown(t *testing.T) {
	s := &domain.Script{
		Name:     "tiny",
		Greeting: "Hello.",
		Rules: []domain.Rule{
			{Keyword: "my", Rank: 2, Decompositions: []domain.Decomposition{
				{Pattern: domain.ParsePattern("* my *"), Memory: true},
			}},
			{Keyword: "computer", Rank: 50, Decompositions: []domain.Decomposition{
				{Pattern: domain.ParsePattern("*")},
			}},
		},
		Synonyms:  []domain.SynonymGroup{{Canonical: "family", Members: []string{"mother", "father"}}},
		Fallbacks: []string{"Go on."},
	}

	md := ScriptMarkdown(s)
	assert.Contains(t, md, "# tiny")
	assert.Contains(t, md, "> Hello.")
	assert.Contains(t, md, "| my | 2 | `* my *` | yes |")
	assert.Contains(t, md, "- **family**: mother, father")
	assert.Contains(t, md, "- Go on.")
	assert.Less(t, bytes.Index([]byte(md), []byte("| computer")), bytes.Index([]byte(md), []byte("| my")))
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer()
	require.NoError(t, err)

	out, err := render("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
	assert.Contains(t, buf.String(), "|___/")
}
