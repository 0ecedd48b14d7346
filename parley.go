package parley

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/parley/internal/runtime"
	loamAdapter "github.com/aretw0/parley/pkg/adapters/loam"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/script"
	"github.com/google/uuid"
)

// Engine is the high-level entry point for the parley library.
// It wraps the internal runtime and provides a simplified API for consumers.
// An Engine may serve any number of sessions concurrently, provided each session
// is driven by one caller at a time. Reload swaps the compiled script atomically;
// a turn in flight finishes against the script it started with.
type Engine struct {
	current atomic.Pointer[compiled]
	loader  ports.ScriptLoader
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	Name    string
}

// compiled pairs a decoded script with the runtime built from it.
type compiled struct {
	runtime *runtime.Engine
	script  *domain.Script
}

// ReloadEvent reports the outcome of a reload triggered by a script change.
type ReloadEvent struct {
	Script string
	Err    error
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoader injects a custom ScriptLoader, bypassing path resolution.
func WithLoader(l ports.ScriptLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithScript serves an already decoded script.
func WithScript(s *domain.Script) Option {
	return func(e *Engine) {
		e.loader = memory.NewLoader(s)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New loads, validates and compiles a script.
//
// The path selects the source: empty for the built-in DOCTOR script, a directory
// for a Loam repository of rule documents, or a .yaml/.json/.toml file.
// If WithLoader or WithScript is provided, path is only used as a label.
// Any *domain.ScriptErrors is returned as is; no engine is built from an invalid script.
func New(path string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		loader, err := resolveLoader(path)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c, err := eng.compile(context.Background())
	if err != nil {
		return nil, err
	}

	eng.Name = c.script.Name
	if eng.Name == "" && path != "" {
		eng.Name = filepath.Base(path)
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("script", eng.Name)
	}

	c.runtime = runtime.NewEngine(c.runtime.Index(), runtime.WithLogger(eng.logger))
	eng.current.Store(c)
	return eng, nil
}

func (e *Engine) compile(ctx context.Context) (*compiled, error) {
	s, err := e.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	ix, err := runtime.Compile(s)
	if err != nil {
		return nil, err
	}
	return &compiled{
		runtime: runtime.NewEngine(ix, runtime.WithLogger(e.logger)),
		script:  s,
	}, nil
}

// Reload loads and compiles the script again and swaps it in for subsequent turns.
// On any error, including *domain.ScriptErrors, the previous script stays in service.
func (e *Engine) Reload(ctx context.Context) error {
	c, err := e.compile(ctx)
	if err != nil {
		e.logger.Warn("reload rejected, keeping previous script", "err", err)
		return err
	}
	e.current.Store(c)
	e.logger.Info("script reloaded", "rules", len(c.script.Rules))
	return nil
}

// AutoReload reloads the script every time the loader reports a change, until ctx
// is done. It returns an error at once when the loader cannot be watched.
// onReload, if set, is called after each attempt.
func (e *Engine) AutoReload(ctx context.Context, onReload func(ReloadEvent)) error {
	changes, err := e.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				err := e.Reload(ctx)
				if onReload == nil {
					continue
				}
				name := e.Inspect().Name
				if name == "" {
					name = e.Name
				}
				onReload(ReloadEvent{Script: name, Err: err})
			}
		}
	}()
	return nil
}

func resolveLoader(path string) (ports.ScriptLoader, error) {
	if path == "" {
		return script.NewFileLoader(""), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid script path: %w", err)
	}
	if !info.IsDir() {
		return script.NewFileLoader(absPath), nil
	}

	// The engine never modifies the rule documents, so Loam runs read-only.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return loamAdapter.New(loam.NewTypedRepository[loamAdapter.Metadata](repo)), nil
}

// NewSession creates a fresh, empty session. An empty id is replaced by a random UUID.
func (e *Engine) NewSession(id string) *domain.Session {
	if id == "" {
		id = uuid.NewString()
	}
	return e.current.Load().runtime.NewSession(id)
}

// Greeting returns the script's opening line, if any.
func (e *Engine) Greeting() string {
	return e.current.Load().script.Greeting
}

// Reply answers one utterance and reports how the answer was produced.
// It fires the lifecycle hooks after the session has been updated.
func (e *Engine) Reply(ctx context.Context, sess *domain.Session, input string) (domain.Reply, error) {
	reply, err := e.current.Load().runtime.Respond(sess, input)
	if err != nil {
		return reply, err
	}

	e.logger.Debug("turn",
		"session_id", sess.ID,
		"source", reply.Source,
		"keyword", reply.Keyword,
		"memory_depth", len(sess.Memory),
	)
	e.emit(ctx, sess, reply)
	return reply, nil
}

// Respond answers one utterance. It never fails for empty or unmatched input.
func (e *Engine) Respond(ctx context.Context, sess *domain.Session, input string) (string, error) {
	reply, err := e.Reply(ctx, sess, input)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

func (e *Engine) emit(ctx context.Context, sess *domain.Session, reply domain.Reply) {
	now := time.Now()
	base := func(t domain.EventType) domain.EventBase {
		return domain.EventBase{Timestamp: now, Type: t, SessionID: sess.ID}
	}

	if reply.Remembered && e.hooks.OnMemoryPush != nil {
		e.hooks.OnMemoryPush(ctx, &domain.MemoryEvent{
			EventBase: base(domain.EventMemoryPush),
			Keyword:   reply.Keyword,
			Depth:     len(sess.Memory),
		})
	}
	if reply.Source == domain.SourceMemory && e.hooks.OnMemoryRecall != nil {
		e.hooks.OnMemoryRecall(ctx, &domain.MemoryEvent{
			EventBase: base(domain.EventMemoryRecall),
			Depth:     len(sess.Memory),
		})
	}
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: base(domain.EventTurn),
			Source:    reply.Source,
			Keyword:   reply.Keyword,
			Pattern:   reply.Pattern,
			Template:  reply.Template,
		})
	}
}

// Keywords lists the rule keywords found in input, in the order they would be tried.
func (e *Engine) Keywords(input string) []string {
	ix := e.current.Load().runtime.Index()
	return ix.Keywords(ix.Normalizer().Tokens(input))
}

// Inspect returns the script served by the engine for introspection tools.
// The returned value must be treated as read-only.
func (e *Engine) Inspect() *domain.Script {
	return e.current.Load().script
}

// Loader returns the underlying ScriptLoader used by the engine.
func (e *Engine) Loader() ports.ScriptLoader {
	return e.loader
}

// Watch returns a channel that signals when the underlying script changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}
