package loam

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/loam"
	"github.com/aretw0/parley/pkg/domain"
)

// Loader adapts a Loam repository (a directory of Markdown/JSON/YAML documents)
// to the parley ScriptLoader interface.
type Loader struct {
	Repo *loam.TypedRepository[Metadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[Metadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Load assembles the script from every document in the repository.
// Documents are visited in ID order so the result is deterministic.
func (l *Loader) Load(ctx context.Context) (*domain.Script, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	var (
		settings   *Metadata
		settingsID string
		rules      []domain.Rule
	)
	for _, doc := range docs {
		meta := doc.Data
		if !meta.IsRule() {
			if settings != nil {
				return nil, fmt.Errorf("script settings defined in both '%s' and '%s'", settingsID, doc.ID)
			}
			settings, settingsID = &meta, doc.ID
			continue
		}

		r, err := meta.rule().Rule()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.ID, err)
		}
		rules = append(rules, r)
	}

	if settings == nil {
		return nil, fmt.Errorf("no settings document found (a document without a keyword)")
	}

	doc := settings.settings()
	s, err := doc.Script()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", settingsID, err)
	}
	s.Rules = append(s.Rules, rules...)
	return s, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: a pending signal already means "reload".
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}
