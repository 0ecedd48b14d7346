package script

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by FileLoader.Watch for the built-in script.
var ErrNotWatchable = errors.New("built-in script cannot be watched")

//go:embed doctor.yaml
var doctorYAML []byte

// Default returns the built-in DOCTOR script.
func Default() (*domain.Script, error) {
	s, err := Parse(doctorYAML, FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded script: %w", err)
	}
	return s, nil
}

// Load reads a script file, inferring its format from the extension.
func Load(path string) (*domain.Script, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// FileLoader implements ports.ScriptLoader for a single script file.
// An empty path selects the built-in script.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load reads and decodes the script.
func (l *FileLoader) Load(ctx context.Context) (*domain.Script, error) {
	if l.path == "" {
		return Default()
	}
	return Load(l.path)
}

// Watch implements ports.Watchable. It watches the script's directory rather than
// the file, so editors that save by rename keep being followed.
func (l *FileLoader) Watch(ctx context.Context) (<-chan struct{}, error) {
	if l.path == "" {
		return nil, ErrNotWatchable
	}
	abs, err := filepath.Abs(l.path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}
