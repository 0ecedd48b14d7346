package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/parley/internal/testutils"
	"github.com/aretw0/parley/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestLoader_AssemblesScript(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)
	writeFiles(t, dir, map[string]string{
		"script.md": `---
name: clinic
greeting: Hello.
fallbacks:
  - Please go on.
  - I see.
memory:
  - "Earlier you said your {1}."
synonyms:
  family: [mother, father]
---
Script-wide settings.`,
		"my.md": `---
keyword: my
rank: 2
decompositions:
  - pattern: "* my @family *"
    reassemblies:
      - Tell me more about your family.
  - pattern: "* my *"
    memory: true
    reassemblies:
      - "Your {1}?"
---
Possessives.`,
		"dream.json": `{
  "keyword": "dream",
  "rank": 3,
  "decompositions": [
    {"pattern": "*", "reassemblies": ["Do you dream often?"]}
  ]
}`,
	})

	loader := New(loam.NewTypedRepository[Metadata](repo))
	s, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "clinic", s.Name)
	assert.Equal(t, "Hello.", s.Greeting)
	require.Len(t, s.Rules, 2)
	assert.Equal(t, "dream", s.Rules[0].Keyword, "documents are visited in ID order")
	assert.Equal(t, "my", s.Rules[1].Keyword)
	assert.True(t, s.Rules[1].Decompositions[1].Memory)

	assert.NoError(t, script.Validate(s))
}

func TestLoader_RequiresSingleSettingsDocument(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	loader := New(loam.NewTypedRepository[Metadata](repo))
	_, err := loader.Load(ctx)
	assert.ErrorContains(t, err, "no settings document")

	require.NoError(t, repo.Save(ctx, core.Document{ID: "a.md", Content: "---\nname: a\nfallbacks: [x]\n---\n"}))
	require.NoError(t, repo.Save(ctx, core.Document{ID: "b.md", Content: "---\nname: b\nfallbacks: [y]\n---\n"}))

	_, err = loader.Load(ctx)
	assert.ErrorContains(t, err, "script settings defined in both")
}

func TestLoader_ReportsTemplateErrorsWithDocument(t *testing.T) {
	dir, repo := testutils.SetupTestRepo(t)
	writeFiles(t, dir, map[string]string{
		"script.md": "---\nname: s\nfallbacks: [Go on.]\n---\n",
		"bad.md": `---
keyword: bad
decompositions:
  - pattern: "*"
    reassemblies: ["{oops"]
---
`,
	})

	_, err := New(loam.NewTypedRepository[Metadata](repo)).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Contains(t, err.Error(), "unclosed placeholder")
}
