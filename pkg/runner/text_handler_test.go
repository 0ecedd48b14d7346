package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader(""), &out, WithTextHandlerTrace(true))

	require.NoError(t, h.Output(context.Background(), "Hello.", nil))
	require.NoError(t, h.Output(context.Background(), "Your dog?", &domain.Reply{
		Source: domain.SourceKeyword, Keyword: "my", Pattern: 0, Template: 1, Remembered: true,
	}))
	require.NoError(t, h.Output(context.Background(), "Go on.", &domain.Reply{Source: domain.SourceFallback, Pattern: -1, Template: -1}))

	assert.Equal(t, "Hello.\nYour dog?  [keyword my #0/1 +memory]\nGo on.  [fallback]\n", out.String())
}

func TestTextHandler_SystemOutputUsesRenderer(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader(""), &out, WithTextHandlerRenderer(func(s string) (string, error) {
		return "Rendered: " + s, nil
	}))

	require.NoError(t, h.SystemOutput(context.Background(), "# Help"))
	assert.Equal(t, "\nRendered: # Help\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("  my user input \n" + strings.Repeat("a", DefaultMaxInputSize+1) + "\nclean\x07 line\n")
	h := NewTextHandler(in, &out, WithTextHandlerPrompt("you> "))

	val, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my user input", val)

	val, err = h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "clean line", val, "oversized line is rejected and the next one read")
	assert.Contains(t, out.String(), "input exceeds maximum allowed size")

	_, err = h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, strings.HasPrefix(out.String(), "you> "))
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	h := NewTextHandler(pr, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.False(t, IsTerminal(nil))
}
