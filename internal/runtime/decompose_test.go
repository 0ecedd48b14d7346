package runtime

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileForTest(t *testing.T, b *dsl.Builder) *Index {
	t.Helper()
	s, err := b.Script()
	require.NoError(t, err)
	ix, err := Compile(s)
	require.NoError(t, err)
	return ix
}

func TestMatch(t *testing.T) {
	b := dsl.New("match").Fallbacks("Go on.").Synonyms("family", "mother", "father")
	b.Rule("family", 0).Pattern("*", "ok")
	ix := compileForTest(t, b)

	tests := []struct {
		name    string
		pattern string
		input   string
		want    [][]string
		ok      bool
	}{
		{"Two wildcards", "* i am *", "well i am very sad", [][]string{{"well"}, {"very", "sad"}}, true},
		{"Empty captures", "* i am *", "i am", [][]string{{}, {}}, true},
		{"Longest first", "* is *", "this is what it is", [][]string{{"this", "is", "what", "it"}, {}}, true},
		{"Literal must cover input", "i am", "i am sad", nil, false},
		{"Literal mismatch", "* you *", "i am sad", nil, false},
		{"Only wildcard", "*", "anything at all", [][]string{{"anything", "at", "all"}}, true},
		{"Wildcard on empty input", "*", "", [][]string{nil}, true},
		{"Group member", "* @family *", "my mother cooks", [][]string{{"my"}, {"cooks"}}, true},
		{"Group canonical", "* @family *", "the family", [][]string{{"the"}, {}}, true},
		{"Group miss", "* @family *", "my dog", nil, false},
		{"Adjacent wildcards", "* * end", "a b end", [][]string{{"a", "b"}, {}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps, ok := ix.match(domain.ParsePattern(tt.pattern), ix.normalizer.Tokens(tt.input))
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.Len(t, caps, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], []string(caps[i]), "capture %d", i)
			}
		})
	}
}

func TestDecompose_FirstMatchingPatternWins(t *testing.T) {
	b := dsl.New("order").Fallbacks("Go on.")
	b.Rule("i", 0).
		Pattern("* i am *", "A {1}").
		Pattern("* i *", "B {1}").
		Pattern("*", "C")
	ix := compileForTest(t, b)
	r := ix.rules["i"]

	idx, caps, ok := ix.decompose(r, ix.normalizer.Tokens("i am tired"))
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []string{"tired"}, caps[1])

	idx, _, ok = ix.decompose(r, ix.normalizer.Tokens("i want rest"))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestDecompose_PatternLiteralsAreNormalized(t *testing.T) {
	b := dsl.New("contractions").Fallbacks("Go on.")
	b.Rule("i", 0).Pattern("* I'm *", "Why are you {1}?")
	ix := compileForTest(t, b)

	idx, caps, ok := ix.decompose(ix.rules["i"], ix.normalizer.Tokens("I am worried"))
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []string{"worried"}, caps[1])
}
