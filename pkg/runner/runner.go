package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
	"github.com/google/uuid"
)

// DefaultExitWords end a conversation when typed on their own.
var DefaultExitWords = []string{"bye", "goodbye", "quit", "exit"}

// DefaultFarewell is printed when the user leaves with an exit word.
const DefaultFarewell = "Goodbye. Thank you for talking to me."

const helpText = `# Commands

| Command | Effect |
|---|---|
| /help | show this help |
| /reset | forget this conversation and start over |
| /session | show the session id and turn count |

Type one of the exit words (%s) or press Ctrl+D to leave.
`

// Engine is what the runner needs from a responder.
type Engine interface {
	session.Responder
	Greeting() string
}

// Runner drives an interactive conversation using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on stdin/stdout.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Sessions persists the conversation between turns.
	// If nil, sessions live in memory for the duration of Run.
	Sessions *session.Manager

	// SessionID selects the conversation to resume. A random one is used when empty.
	SessionID string

	ExitWords []string
	Farewell  string
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ExitWords: DefaultExitWords,
		Farewell:  DefaultFarewell,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run converses until the user leaves, input ends or ctx is cancelled.
// A new session is opened with the script greeting; resuming an existing one prints a status line.
// Interrupts and EOF end the conversation without error.
func (r *Runner) Run(ctx context.Context, engine Engine) error {
	handler := r.resolveHandler()
	sessions := r.resolveSessions()

	id := r.SessionID
	if id == "" {
		id = uuid.NewString()
		r.SessionID = id
	}

	if err := r.open(ctx, engine, handler, sessions, id); err != nil {
		return err
	}

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		inputCtx := signals.Context()
		text, err := handler.Input(inputCtx)
		if err != nil {
			signals.CheckRace()
			if inputCtx.Err() != nil {
				r.Logger.Debug("conversation interrupted", "session_id", id, "err", err)
				return nil
			}
			if errors.Is(err, io.EOF) {
				r.Logger.Debug("input closed", "session_id", id)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		if r.isExit(text) {
			if r.Farewell != "" {
				if err := handler.Output(ctx, r.Farewell, nil); err != nil {
					return fmt.Errorf("output error: %w", err)
				}
			}
			return nil
		}

		if strings.HasPrefix(text, "/") {
			if err := r.command(ctx, engine, handler, sessions, id, text); err != nil {
				return err
			}
			continue
		}

		reply, err := sessions.Respond(ctx, engine, id, text)
		if err != nil {
			return fmt.Errorf("turn failed: %w", err)
		}
		if err := handler.Output(ctx, reply.Text, &reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

func (r *Runner) open(ctx context.Context, engine Engine, handler IOHandler, sessions *session.Manager, id string) error {
	sess, err := sessions.Load(ctx, id)
	if err == nil {
		r.Logger.Debug("session resumed", "session_id", id, "turns", sess.Turns)
		return handler.SystemOutput(ctx, fmt.Sprintf("Resuming session %s (%d turns).", id, sess.Turns))
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if _, err := sessions.LoadOrCreate(ctx, id); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	r.Logger.Debug("session created", "session_id", id)
	if g := engine.Greeting(); g != "" {
		return handler.Output(ctx, g, nil)
	}
	return nil
}

func (r *Runner) command(ctx context.Context, engine Engine, handler IOHandler, sessions *session.Manager, id, text string) error {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "/help":
		return handler.SystemOutput(ctx, fmt.Sprintf(helpText, strings.Join(r.ExitWords, ", ")))
	case "/reset":
		if err := sessions.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		return r.open(ctx, engine, handler, sessions, id)
	case "/session":
		sess, err := sessions.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		return handler.SystemOutput(ctx, fmt.Sprintf("Session %s: %d turns, %d remembered.", id, sess.Turns, len(sess.Memory)))
	default:
		return handler.SystemOutput(ctx, fmt.Sprintf("Unknown command %q. Type /help.", text))
	}
}

func (r *Runner) isExit(text string) bool {
	t := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!"))
	for _, w := range r.ExitWords {
		if t == w {
			return true
		}
	}
	return false
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		// Memoize to prevent creating new Pumps on subsequent Run() calls
		r.Handler = NewTextHandler(nil, nil)
	}
	return r.Handler
}

func (r *Runner) resolveSessions() *session.Manager {
	if r.Sessions == nil {
		r.Sessions = session.NewManager(memory.NewStore(), session.WithLogger(r.Logger))
	}
	return r.Sessions
}
