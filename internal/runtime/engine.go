package runtime

import (
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/parley/pkg/domain"
)

// MaxRedirects bounds how many "=keyword" hops a single turn may follow.
const MaxRedirects = 3

// ErrNilSession is returned when Respond is called without a session.
var ErrNilSession = errors.New("runtime: nil session")

// Engine answers utterances against a compiled Index.
// It holds no per-conversation state and is safe for concurrent use
// as long as each session is driven by one caller at a time.
type Engine struct {
	ix     *Index
	logger *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for turn diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine bound to ix.
func NewEngine(ix *Index, opts ...EngineOption) *Engine {
	e := &Engine{
		ix:     ix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Index returns the compiled script the engine serves.
func (e *Engine) Index() *Index {
	return e.ix
}

// NewSession produces a fresh, empty session.
func (e *Engine) NewSession(id string) *domain.Session {
	return domain.NewSession(id)
}

// Respond runs one turn. Empty or unmatched input is answered from memory or
// the fallback rotation and never fails. The only error besides a nil session is
// *domain.ConfigurationError, in which case the session is left unchanged.
func (e *Engine) Respond(sess *domain.Session, input string) (domain.Reply, error) {
	if sess == nil {
		return domain.Reply{}, ErrNilSession
	}
	if sess.Usage == nil {
		sess.Usage = make(map[string]int)
	}

	clauses := e.ix.normalizer.Normalize(input)
	var tokens []string
	for _, c := range clauses {
		tokens = append(tokens, c...)
	}

	// Statements remembered by a candidate that is later dropped are still kept.
	t := newTurn(sess)
	for _, c := range e.ix.selectKeywords(tokens) {
		clause := e.clauseFor(clauses, c.rule.keyword)
		res, ok, err := e.dispatch(t, c.rule, clause, 0)
		if err != nil {
			e.logger.Warn("reassembly failed", "session_id", sess.ID, "keyword", c.rule.keyword, "error", err)
			return domain.Reply{}, err
		}
		if !ok {
			e.logger.Debug("keyword dropped, no pattern matched", "session_id", sess.ID, "keyword", c.rule.keyword)
			t.drop()
			continue
		}
		t.commit(e.ix.memoryCap)
		sess.Turns++
		res.Remembered = len(t.remembered) > 0
		return res, nil
	}

	// A statement remembered in this turn is queued after the pop so it surfaces later.
	sess.Turns++
	res := domain.Reply{Source: domain.SourceMemory, Pattern: -1, Template: -1, Remembered: len(t.remembered) > 0}
	stmt, ok := popMemory(sess)
	if !ok {
		res.Source = domain.SourceFallback
		stmt = e.ix.fallback(sess)
	}
	t.commit(e.ix.memoryCap)
	res.Text = stmt
	return res, nil
}

// dispatch decomposes the clause with r and reassembles the answer, following
// redirects up to MaxRedirects.
func (e *Engine) dispatch(t *turn, r *rule, clause []string, depth int) (domain.Reply, bool, error) {
	idx, caps, ok := e.ix.decompose(r, clause)
	if !ok {
		return domain.Reply{}, false, nil
	}
	d := r.decomps[idx]
	reflected := e.ix.reflectCaptures(caps)

	memKey := domain.MemoryUsageKey(r.keyword, idx)
	if _, seen := t.memUsage[memKey]; d.memory && !seen {
		stmt, _, _, err := e.ix.reassemble(t, r.keyword, idx, d.memoryTpls, memKey, true, reflected)
		if err != nil {
			return domain.Reply{}, false, err
		}
		t.remembered = append(t.remembered, stmt)
	}

	text, j, tpl, err := e.ix.reassemble(t, r.keyword, idx, d.reassemblies, domain.UsageKey(r.keyword, idx), false, reflected)
	if err != nil {
		return domain.Reply{}, false, err
	}
	if tpl.IsRedirect() {
		if depth >= MaxRedirects {
			e.logger.Debug("redirect limit reached", "keyword", r.keyword, "target", tpl.Redirect)
			return domain.Reply{}, false, nil
		}
		return e.dispatch(t, e.ix.rules[tpl.Redirect], clause, depth+1)
	}

	return domain.Reply{
		Text:     text,
		Source:   domain.SourceKeyword,
		Keyword:  r.keyword,
		Pattern:  idx,
		Template: j,
	}, true, nil
}

// clauseFor returns the first clause mentioning keyword, directly or through a synonym.
func (e *Engine) clauseFor(clauses [][]string, keyword string) []string {
	for _, c := range clauses {
		for _, tok := range c {
			if e.ix.Canonical(tok) == keyword {
				return c
			}
		}
	}
	return nil
}
