package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// Loader implements ports.ScriptLoader over a script held in memory.
type Loader struct {
	script *domain.Script
}

// NewLoader wraps an already decoded script.
func NewLoader(script *domain.Script) *Loader {
	return &Loader{script: script}
}

// Load returns the wrapped script.
func (l *Loader) Load(ctx context.Context) (*domain.Script, error) {
	if l.script == nil {
		return nil, fmt.Errorf("memory loader has no script")
	}
	return l.script, nil
}
