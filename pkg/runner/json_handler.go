package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Message types written by JSONHandler.
const (
	MessageGreeting = "greeting"
	MessageReply    = "reply"
	MessageSystem   = "system"
)

// Message is one JSON line written by JSONHandler.
type Message struct {
	Type  string        `json:"type"`
	Text  string        `json:"text"`
	Reply *domain.Reply `json:"reply,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, text string, reply *domain.Reply) error {
	msg := Message{Type: MessageReply, Text: text, Reply: reply}
	if reply == nil {
		msg.Type = MessageGreeting
	}
	return h.Encoder.Encode(msg)
}

// Input reads one line. A JSON string, an object with a "text" field or plain
// text are all accepted. Blank lines are skipped.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := h.Reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return SanitizeInput(decodeLine(line))
	}
}

func decodeLine(line string) string {
	var val string
	if err := json.Unmarshal([]byte(line), &val); err == nil {
		return val
	}
	var obj struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(line), &obj); err == nil && obj.Text != nil {
		return *obj.Text
	}
	// Fallback: return raw text (e.g. if they just sent plain text)
	return line
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Message{Type: MessageSystem, Text: msg})
}
