package runner

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a line spoken by the responder.
	// reply is nil for the greeting.
	Output(ctx context.Context, text string, reply *domain.Reply) error

	// Input reads the next utterance from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. help, status updates).
	// This is distinct from the conversation itself.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
