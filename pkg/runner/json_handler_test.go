package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_Output(t *testing.T) {
	var buf bytes.Buffer
	h := NewJSONHandler(strings.NewReader(""), &buf)

	require.NoError(t, h.Output(context.Background(), "Hi.", nil))
	require.NoError(t, h.Output(context.Background(), "Go on.", &domain.Reply{Text: "Go on.", Source: domain.SourceFallback, Pattern: -1, Template: -1}))
	require.NoError(t, h.SystemOutput(context.Background(), "System Status"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var msgs []Message
	for _, l := range lines {
		var m Message
		require.NoError(t, json.Unmarshal([]byte(l), &m))
		msgs = append(msgs, m)
	}
	assert.Equal(t, MessageGreeting, msgs[0].Type)
	assert.Nil(t, msgs[0].Reply)
	assert.Equal(t, MessageReply, msgs[1].Type)
	assert.Equal(t, domain.SourceFallback, msgs[1].Reply.Source)
	assert.Equal(t, Message{Type: MessageSystem, Text: "System Status"}, msgs[2])
}

func TestJSONHandler_Input(t *testing.T) {
	in := strings.NewReader("\"Hello World\"\n\n{\"text\":\"from object\"}\njust plain text\n{\"other\":1}\nlast line")
	h := NewJSONHandler(in, io.Discard)

	for _, want := range []string{"Hello World", "from object", "just plain text", `{"other":1}`, "last line"} {
		val, err := h.Input(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, val)
	}

	_, err := h.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
