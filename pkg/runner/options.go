package runner

import (
	"log/slog"

	"github.com/aretw0/parley/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithSessions configures the session manager used for persistence.
func WithSessions(m *session.Manager) Option {
	return func(r *Runner) {
		r.Sessions = m
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithSessionID selects the conversation to resume or create.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithExitWords replaces the words that end the conversation.
func WithExitWords(words ...string) Option {
	return func(r *Runner) {
		r.ExitWords = words
	}
}

// WithFarewell sets the line printed when the user leaves. Empty disables it.
func WithFarewell(text string) Option {
	return func(r *Runner) {
		r.Farewell = text
	}
}
