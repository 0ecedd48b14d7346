package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// ScriptLoader defines how the engine retrieves its rule table.
// This allows the script source (embedded, files, Loam, memory) to be decoupled.
type ScriptLoader interface {
	// Load returns the decoded, not yet compiled, script.
	Load(ctx context.Context) (*domain.Script, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying script changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
