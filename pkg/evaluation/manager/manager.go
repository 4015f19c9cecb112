package manager

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sentinel-hq/sentinel/pkg/evaluation"
)

// Manager owns a fixed registry of named evaluator instances. The registry
// is immutable after construction; only the evaluators' load state changes.
//
// Concurrent LoadAll calls are deduplicated best-effort through an
// in-progress flag: a second caller that observes a load in progress
// returns immediately without starting a second load. This is a dedup, not
// a completion-ordering guarantee.
type Manager struct {
	evaluators map[string]evaluation.Evaluator

	// names preserves registration order for deterministic iteration.
	names []string

	isLoading    atomic.Bool
	initDuration atomic.Int64 // nanoseconds of the last completed LoadAll

	logger *slog.Logger
}

// LoadResult records the outcome of one evaluator's load or unload task.
type LoadResult struct {
	// Name is the evaluator's registry name.
	Name string

	// Err is the task's failure, or nil on success.
	Err error

	// Duration is how long the task took.
	Duration time.Duration
}

// SystemInfo is a snapshot of the manager and every registered evaluator.
type SystemInfo struct {
	// InitializationMS is the duration of the last completed LoadAll in
	// milliseconds; zero if LoadAll has not completed yet.
	InitializationMS float64 `json:"initialization_ms"`

	// IsLoading reports whether a LoadAll is currently in progress.
	IsLoading bool `json:"is_loading"`

	// Evaluators maps evaluator name to its current ModelInfo snapshot,
	// for every registered evaluator regardless of load state.
	Evaluators map[string]evaluation.ModelInfo `json:"evaluators"`
}

// New constructs a Manager owning the given evaluators. It fails if the
// registry itself cannot be built (nil or duplicate evaluators); this is
// the only fatal construction path, and it propagates to the caller
// responsible for startup.
func New(logger *slog.Logger, evaluators ...evaluation.Evaluator) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		evaluators: make(map[string]evaluation.Evaluator, len(evaluators)),
		names:      make([]string, 0, len(evaluators)),
		logger:     logger.With("component", "evaluator.manager"),
	}

	for _, e := range evaluators {
		if e == nil {
			return nil, ErrNilEvaluator
		}
		name := e.Name()
		if _, exists := m.evaluators[name]; exists {
			return nil, DuplicateEvaluatorError(name)
		}
		m.evaluators[name] = e
		m.names = append(m.names, name)
	}

	return m, nil
}

// LoadAll loads every registered evaluator concurrently and returns one
// LoadResult per evaluator. Individual load failures are captured in the
// results, never raised: one failing evaluator must not prevent the others
// from becoming available.
//
// If a load is already in progress the call returns nil immediately.
func (m *Manager) LoadAll(ctx context.Context) []LoadResult {
	if !m.isLoading.CompareAndSwap(false, true) {
		m.logger.Info("load already in progress, skipping")
		return nil
	}
	defer m.isLoading.Store(false)

	start := time.Now()
	m.logger.Info("loading evaluators", "count", len(m.names))

	results := make([]LoadResult, len(m.names))
	var wg sync.WaitGroup

	for i, name := range m.names {
		wg.Add(1)
		go func(i int, e evaluation.Evaluator) {
			defer wg.Done()

			taskStart := time.Now()
			err := e.Load(ctx)
			results[i] = LoadResult{
				Name:     e.Name(),
				Err:      err,
				Duration: time.Since(taskStart),
			}
			if err != nil {
				m.logger.Error("evaluator load failed", "evaluator", e.Name(), "error", err)
			}
		}(i, m.evaluators[name])
	}
	wg.Wait()

	m.initDuration.Store(int64(time.Since(start)))
	m.logger.Info("evaluators loaded", "duration", time.Since(start))

	return results
}

// UnloadAll unloads every currently loaded evaluator concurrently.
// Evaluators already unloaded are skipped.
func (m *Manager) UnloadAll(ctx context.Context) []LoadResult {
	m.logger.Info("unloading evaluators")

	var (
		mu      sync.Mutex
		results []LoadResult
		wg      sync.WaitGroup
	)

	for _, name := range m.names {
		e := m.evaluators[name]
		if !e.Loaded() {
			continue
		}

		wg.Add(1)
		go func(e evaluation.Evaluator) {
			defer wg.Done()

			taskStart := time.Now()
			err := e.Unload(ctx)
			if err != nil {
				m.logger.Error("evaluator unload failed", "evaluator", e.Name(), "error", err)
			}

			mu.Lock()
			results = append(results, LoadResult{
				Name:     e.Name(),
				Err:      err,
				Duration: time.Since(taskStart),
			})
			mu.Unlock()
		}(e)
	}
	wg.Wait()

	m.logger.Info("evaluators unloaded", "count", len(results))
	return results
}

// HealthCheckAll checks every currently loaded evaluator concurrently and
// returns a map with an entry per loaded evaluator. Evaluators that are not
// loaded are omitted; nothing is loaded implicitly.
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]bool {
	var (
		mu      sync.Mutex
		results = make(map[string]bool)
		wg      sync.WaitGroup
	)

	for _, name := range m.names {
		e := m.evaluators[name]
		if !e.Loaded() {
			continue
		}

		wg.Add(1)
		go func(name string, e evaluation.Evaluator) {
			defer wg.Done()

			healthy := e.HealthCheck(ctx)

			mu.Lock()
			results[name] = healthy
			mu.Unlock()
		}(name, e)
	}
	wg.Wait()

	return results
}

// SystemInfo returns a snapshot of the manager state and every registered
// evaluator's ModelInfo, regardless of load state.
func (m *Manager) SystemInfo() SystemInfo {
	info := SystemInfo{
		InitializationMS: float64(m.initDuration.Load()) / float64(time.Millisecond),
		IsLoading:        m.isLoading.Load(),
		Evaluators:       make(map[string]evaluation.ModelInfo, len(m.names)),
	}
	for _, name := range m.names {
		info.Evaluators[name] = m.evaluators[name].ModelInfo()
	}
	return info
}

// Get returns the named evaluator, or false if it is not registered.
func (m *Manager) Get(name string) (evaluation.Evaluator, bool) {
	e, ok := m.evaluators[name]
	return e, ok
}

// Names returns the evaluator names in registration order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// Evaluators returns the registered evaluators in registration order.
func (m *Manager) Evaluators() []evaluation.Evaluator {
	evals := make([]evaluation.Evaluator, 0, len(m.names))
	for _, name := range m.names {
		evals = append(evals, m.evaluators[name])
	}
	return evals
}

// IsLoading reports whether a LoadAll is currently in progress.
func (m *Manager) IsLoading() bool {
	return m.isLoading.Load()
}
