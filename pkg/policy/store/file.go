package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"sentinel-hq/sentinel/pkg/policy"
)

// reloadDebounce is how long the watcher waits after a file event before
// reloading, to coalesce editor write bursts into one reload.
const reloadDebounce = 100 * time.Millisecond

// FileStore is a read-only policy source backed by a YAML file. The file
// holds a `policies:` list; invalid entries are skipped with a warning.
// Watch reloads the file when it changes.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	policies map[string]*policy.Policy
}

// policyFile is the on-disk document shape.
type policyFile struct {
	Policies []*policy.Policy `yaml:"policies"`
}

// NewFileStore loads the policy file at path. The file must exist and
// parse, though individual invalid policies are skipped.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &FileStore{
		path:   path,
		logger: logger.With("component", "policy.filestore"),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload reads and parses the policy file, then atomically swaps the
// in-memory snapshot.
func (s *FileStore) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read policy file %q: %w", s.path, err)
	}

	var doc policyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse policy file %q: %w", s.path, err)
	}

	policies := make(map[string]*policy.Policy, len(doc.Policies))
	for _, p := range doc.Policies {
		if err := policy.Validate(p); err != nil {
			s.logger.Warn("skipping invalid policy",
				"policy_id", p.ID,
				"error", err,
			)
			continue
		}
		policies[p.ID] = p
	}

	s.mu.Lock()
	s.policies = policies
	s.mu.Unlock()

	s.logger.Info("loaded policies from file",
		"path", s.path,
		"policy_count", len(policies),
	)
	return nil
}

// Watch reloads the policy file whenever it changes, until the context is
// cancelled. Reload failures keep the previous snapshot.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: editors often replace the file, which drops
	// a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %q: %w", s.path, err)
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					if err := s.reload(); err != nil {
						s.logger.Error("policy reload failed", "error", err)
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("policy watcher error", "error", err)
			}
		}
	}()

	s.logger.Info("policy file watcher started", "path", s.path)
	return nil
}

// Get returns the policy with the given ID.
func (s *FileStore) Get(ctx context.Context, id string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.policies[id]
	if !ok {
		return nil, fmt.Errorf("policy %q: %w", id, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// List returns the policies matching the filter, ordered by ID.
func (s *FileStore) List(ctx context.Context, filter Filter) ([]*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*policy.Policy, 0, len(s.policies))
	for _, p := range s.policies {
		if !filter.Matches(p) {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Put is not supported; the file is the source of truth.
func (s *FileStore) Put(ctx context.Context, p *policy.Policy) error {
	return ErrReadOnly
}

// Delete is not supported; the file is the source of truth.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	return ErrReadOnly
}

// Close is a no-op; the watcher is bound to its context.
func (s *FileStore) Close() error { return nil }
