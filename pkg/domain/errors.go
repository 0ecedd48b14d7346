package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ScriptError reports a malformed rule table. It is fatal at load time:
// an engine never serves turns with a script that produced one.
type ScriptError struct {
	Rule     string // keyword of the offending rule, empty for script-level problems
	Pattern  int    // decomposition index, -1 if not applicable
	Template int    // reassembly index, -1 if not applicable
	Reason   string
}

func (e *ScriptError) Error() string {
	var loc []string
	if e.Rule != "" {
		loc = append(loc, fmt.Sprintf("rule %q", e.Rule))
	}
	if e.Pattern >= 0 {
		loc = append(loc, fmt.Sprintf("pattern %d", e.Pattern))
	}
	if e.Template >= 0 {
		loc = append(loc, fmt.Sprintf("template %d", e.Template))
	}
	if len(loc) == 0 {
		return "script: " + e.Reason
	}
	return fmt.Sprintf("script: %s: %s", strings.Join(loc, ", "), e.Reason)
}

// ScriptErrors aggregates every problem found while validating a script.
type ScriptErrors struct {
	Errors []*ScriptError
}

func (e *ScriptErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d script errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual errors to errors.Is / errors.As.
func (e *ScriptErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// ConfigurationError signals a placeholder that has no capture at substitution time.
// With a validated script it indicates a validator inconsistency.
type ConfigurationError struct {
	Keyword  string
	Pattern  int
	Template int
	Index    int
	Captures int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: rule %q pattern %d template %d references capture %d but only %d captured",
		e.Keyword, e.Pattern, e.Template, e.Index, e.Captures)
}
