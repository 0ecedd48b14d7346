package runtime_test

import (
	"testing"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, configure ...func(*dsl.Builder)) *runtime.Engine {
	t.Helper()
	b := dsl.New("test").
		Fallbacks("Please go on.", "Tell me more.", "I see.").
		Synonyms("family", "mother", "father", "mom")

	b.Rule("my", 2).
		Pattern("* my *", "Your {1}?", "Why do you say your {1}?").
		Remember("Earlier you said your {1}.", "Does that have anything to do with your {1}?")
	b.Rule("family", 5).
		Pattern("* @family *", "Tell me more about your family.")
	b.Rule("dream", 3).
		Pattern("*", "What does that dream suggest to you?")
	b.Rule("computer", 3).
		Pattern("*", "Do computers worry you?")
	b.Rule("sorry", 0).
		Pattern("*", "Please don't apologize.", "Apologies are not necessary.", "What feelings do you have when you apologize?")
	b.Rule("remember", 5).
		Pattern("* i remember *", "Do you often think of {1}?").
		Pattern("*", "What about it?")
	b.Rule("what", 10).
		Pattern("what is *", "Why do you ask about {0}?")
	b.Rule("maybe", 0).
		Pattern("*", "=perhaps")
	b.Rule("perhaps", 0).
		Pattern("*", "You don't seem quite certain.")

	for _, c := range configure {
		c(b)
	}

	s, err := b.Script()
	require.NoError(t, err)
	ix, err := runtime.Compile(s)
	require.NoError(t, err)
	return runtime.NewEngine(ix)
}

func respond(t *testing.T, e *runtime.Engine, sess *domain.Session, input string) domain.Reply {
	t.Helper()
	res, err := e.Respond(sess, input)
	require.NoError(t, err)
	return res
}

func TestEngine_SingleKeywordFiresItsRule(t *testing.T) {
	e := newTestEngine(t)

	for input, keyword := range map[string]string{
		"I had a strange dream":       "dream",
		"the computer is slow":        "computer",
		"sorry about that":            "sorry",
		"my car broke down":           "my",
		"maybe":                       "perhaps",
		"i remember the old house":    "remember",
		"what is the meaning of life": "what",
	} {
		t.Run(input, func(t *testing.T) {
			res := respond(t, e, e.NewSession("s"), input)
			assert.Equal(t, domain.SourceKeyword, res.Source)
			assert.Equal(t, keyword, res.Keyword)
		})
	}
}

func TestEngine_RankThenEarliestOccurrence(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		input string
		want  string
	}{
		{"my mother is kind", "family"},
		{"mother loves my cat", "family"},
		{"dream of a computer", "dream"},
		{"a computer in my dream", "computer"},
		{"sorry, my dream", "dream"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := respond(t, e, e.NewSession("s"), tt.input)
			assert.Equal(t, tt.want, res.Keyword)
		})
	}
}

func TestEngine_ReassemblyRotation(t *testing.T) {
	e := newTestEngine(t)
	sess := e.NewSession("s")

	var used []int
	for i := 0; i < 5; i++ {
		res := respond(t, e, sess, "sorry")
		used = append(used, res.Template)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, used)
	assert.Equal(t, 2, sess.Usage[domain.UsageKey("sorry", 0)], "counter is stored wrapped")
}

func TestEngine_ReflectionInCaptures(t *testing.T) {
	e := newTestEngine(t)

	res := respond(t, e, e.NewSession("s"), "I remember my dog and me")
	assert.Equal(t, "Do you often think of your dog and you?", res.Text)

	res = respond(t, e, e.NewSession("s"), "My boss hates me.")
	assert.Equal(t, "Your boss hates you?", res.Text)
}

func TestEngine_MemoryRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	sess := e.NewSession("s")

	res := respond(t, e, sess, "My dog bit me")
	assert.True(t, res.Remembered)
	assert.Equal(t, []string{"Earlier you said your dog bit you."}, sess.Memory)

	res = respond(t, e, sess, "xyzzy")
	assert.Equal(t, domain.SourceMemory, res.Source)
	assert.Equal(t, "Earlier you said your dog bit you.", res.Text)
	assert.Empty(t, sess.Memory)

	res = respond(t, e, sess, "xyzzy")
	assert.Equal(t, domain.SourceFallback, res.Source)
}

func TestEngine_MemoryEvictsOldest(t *testing.T) {
	e := newTestEngine(t, func(b *dsl.Builder) { b.MemoryCap(2) })
	sess := e.NewSession("s")

	respond(t, e, sess, "my cat")
	respond(t, e, sess, "my dog")
	respond(t, e, sess, "my fish")
	require.Len(t, sess.Memory, 2)

	assert.Equal(t, "Does that have anything to do with your dog?", respond(t, e, sess, "hmm").Text)
	assert.Equal(t, "Earlier you said your fish.", respond(t, e, sess, "hmm").Text)
	assert.Equal(t, domain.SourceFallback, respond(t, e, sess, "hmm").Source)
}

func TestEngine_FallbackNeverRepeatsConsecutively(t *testing.T) {
	lists := [][]string{
		{"Please go on.", "Tell me more.", "I see."},
		{"A", "A", "B"},
		{"A", "B", "A"},
		{"A", "B"},
	}
	for _, fallbacks := range lists {
		b := dsl.New("fb").Fallbacks(fallbacks...)
		b.Rule("x", 0).Pattern("*", "X.")
		s, err := b.Script()
		require.NoError(t, err)
		ix, err := runtime.Compile(s)
		require.NoError(t, err)
		e := runtime.NewEngine(ix)

		sess := e.NewSession("s")
		prev := ""
		for i := 0; i < 10; i++ {
			res := respond(t, e, sess, "nothing to see")
			require.Equal(t, domain.SourceFallback, res.Source)
			assert.NotEqual(t, prev, res.Text, "turn %d of %v", i, fallbacks)
			prev = res.Text
		}
	}
}

func TestEngine_FallbackRotationOrder(t *testing.T) {
	e := newTestEngine(t)
	sess := e.NewSession("s")

	var got []string
	for i := 0; i < 4; i++ {
		got = append(got, respond(t, e, sess, "").Text)
	}
	assert.Equal(t, []string{"Please go on.", "Tell me more.", "I see.", "Please go on."}, got)
}

func TestEngine_SessionIsolation(t *testing.T) {
	e := newTestEngine(t)
	a := e.NewSession("a")
	b := e.NewSession("b")

	respond(t, e, a, "sorry")
	respond(t, e, a, "sorry")
	respond(t, e, a, "my job bores me")

	assert.Equal(t, 0, respond(t, e, b, "sorry").Template)
	assert.Equal(t, domain.SourceFallback, respond(t, e, b, "xyzzy").Source)
	assert.Len(t, a.Memory, 1)
	assert.Equal(t, 2, a.Usage[domain.UsageKey("sorry", 0)])
}

func TestEngine_CandidateWithoutMatchingPatternIsDropped(t *testing.T) {
	e := newTestEngine(t)

	res := respond(t, e, e.NewSession("s"), "so what about my car")
	assert.Equal(t, "my", res.Keyword)
	assert.Equal(t, "Your car?", res.Text)
}

func TestEngine_UsesClauseContainingKeyword(t *testing.T) {
	e := newTestEngine(t)

	res := respond(t, e, e.NewSession("s"), "I am fine. But my sister is not!")
	assert.Equal(t, "Your sister is not?", res.Text)
}

func TestEngine_RedirectLoopFallsBack(t *testing.T) {
	e := newTestEngine(t, func(b *dsl.Builder) {
		b.Rule("ping", 0).Pattern("*", "=pong")
		b.Rule("pong", 0).Pattern("*", "=ping")
	})

	res := respond(t, e, e.NewSession("s"), "ping")
	assert.Equal(t, domain.SourceFallback, res.Source)
}

func TestEngine_MemoryKeptWhenRedirectTargetFails(t *testing.T) {
	e := newTestEngine(t, func(b *dsl.Builder) {
		b.Rule("pet", 4).
			Pattern("* pet *", "=ghost").
			Remember("You mentioned the pet {1}.")
		b.Rule("ghost", 0).Pattern("boo", "Boo!")
	})
	sess := e.NewSession("s")

	res := respond(t, e, sess, "the pet ate it")
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, "Please go on.", res.Text)
	assert.True(t, res.Remembered)
	assert.Equal(t, []string{"You mentioned the pet ate it."}, sess.Memory)
	assert.NotContains(t, sess.Usage, domain.UsageKey("pet", 0), "dropped candidates do not advance their rotation")

	res = respond(t, e, sess, "xyzzy")
	assert.Equal(t, domain.SourceMemory, res.Source)
	assert.Equal(t, "You mentioned the pet ate it.", res.Text)
}

func TestEngine_MemoryFromDroppedCandidateIsNotRecalledSameTurn(t *testing.T) {
	e := newTestEngine(t, func(b *dsl.Builder) {
		b.Rule("pet", 4).
			Pattern("* pet *", "=ghost").
			Remember("You mentioned the pet {1}.")
		b.Rule("ghost", 0).Pattern("boo", "Boo!")
	})
	sess := e.NewSession("s")
	sess.Memory = []string{"Earlier you said your dog bit you."}

	res := respond(t, e, sess, "the pet ran")
	assert.Equal(t, domain.SourceMemory, res.Source)
	assert.Equal(t, "Earlier you said your dog bit you.", res.Text)
	assert.Equal(t, []string{"You mentioned the pet ran."}, sess.Memory)
}

func TestEngine_EmptyInput(t *testing.T) {
	e := newTestEngine(t)
	sess := e.NewSession("s")

	res := respond(t, e, sess, "")
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, 1, sess.Turns)
}

func TestEngine_NilSession(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Respond(nil, "hello")
	assert.ErrorIs(t, err, runtime.ErrNilSession)
}

func TestEngine_Keywords(t *testing.T) {
	e := newTestEngine(t)
	tokens := e.Index().Normalizer().Tokens("sorry, my mom had a dream")
	assert.Equal(t, []string{"family", "dream", "my", "sorry"}, e.Index().Keywords(tokens))
}
