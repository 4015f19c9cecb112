package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sentinel-hq/sentinel/pkg/evaluation"
)

// fakeEvaluator is a controllable Evaluator for lifecycle tests.
type fakeEvaluator struct {
	name    string
	blockCh chan struct{} // Load blocks until this closes, when non-nil
	loadErr error
	healthy bool

	mu          sync.Mutex
	loaded      bool
	loadCalls   atomic.Int32
	unloadCalls atomic.Int32
}

func newFake(name string) *fakeEvaluator {
	return &fakeEvaluator{name: name, healthy: true}
}

func (f *fakeEvaluator) Name() string { return f.name }

func (f *fakeEvaluator) Load(ctx context.Context) error {
	f.loadCalls.Add(1)
	if f.blockCh != nil {
		<-f.blockCh
	}
	if f.loadErr != nil {
		return f.loadErr
	}
	f.mu.Lock()
	f.loaded = true
	f.mu.Unlock()
	return nil
}

func (f *fakeEvaluator) Unload(ctx context.Context) error {
	f.unloadCalls.Add(1)
	f.mu.Lock()
	f.loaded = false
	f.mu.Unlock()
	return nil
}

func (f *fakeEvaluator) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

func (f *fakeEvaluator) HealthCheck(ctx context.Context) bool {
	return f.Loaded() && f.healthy
}

func (f *fakeEvaluator) ModelInfo() evaluation.ModelInfo {
	return evaluation.ModelInfo{
		Name:    f.name,
		Version: "test",
		Loaded:  f.Loaded(),
	}
}

func TestNew_RegistryValidation(t *testing.T) {
	if _, err := New(nil, newFake("a"), nil); !errors.Is(err, ErrNilEvaluator) {
		t.Errorf("nil evaluator: err = %v, want ErrNilEvaluator", err)
	}

	if _, err := New(nil, newFake("a"), newFake("a")); !errors.Is(err, ErrDuplicateEvaluator) {
		t.Errorf("duplicate name: err = %v, want ErrDuplicateEvaluator", err)
	}
}

func TestLoadAll_PartialFailure(t *testing.T) {
	good := newFake("good")
	bad := newFake("bad")
	bad.loadErr = errors.New("model fetch failed")

	m, err := New(nil, good, bad)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	results := m.LoadAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	byName := make(map[string]LoadResult)
	for _, r := range results {
		byName[r.Name] = r
	}

	if byName["good"].Err != nil {
		t.Errorf("good evaluator failed: %v", byName["good"].Err)
	}
	if byName["bad"].Err == nil {
		t.Error("bad evaluator reported no error")
	}

	// The failing evaluator must not prevent the other from loading.
	if !good.Loaded() {
		t.Error("good evaluator not loaded")
	}
	if bad.Loaded() {
		t.Error("bad evaluator reports loaded despite failure")
	}

	// The in-progress flag is reset even when an evaluator failed.
	if m.IsLoading() {
		t.Error("manager still reports loading after LoadAll returned")
	}
}

func TestLoadAll_ConcurrentDedup(t *testing.T) {
	release := make(chan struct{})
	slow := newFake("slow")
	slow.blockCh = release

	m, err := New(nil, slow)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.LoadAll(context.Background())
		}()
	}

	// Give the losing callers time to observe the in-progress flag while
	// the winner is parked inside Load, then let the winner finish.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// At most one concurrent LoadAll may reach the evaluator.
	if calls := slow.loadCalls.Load(); calls > 1 {
		t.Errorf("load invoked %d times under concurrent LoadAll, want at most 1", calls)
	}
}

func TestUnloadAll_SkipsUnloaded(t *testing.T) {
	loadedEval := newFake("loaded")
	unloadedEval := newFake("unloaded")

	m, err := New(nil, loadedEval, unloadedEval)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := loadedEval.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	results := m.UnloadAll(context.Background())
	if len(results) != 1 {
		t.Fatalf("got %d unload results, want 1", len(results))
	}
	if results[0].Name != "loaded" {
		t.Errorf("unloaded %q, want %q", results[0].Name, "loaded")
	}
	if unloadedEval.unloadCalls.Load() != 0 {
		t.Error("unload invoked on evaluator that was never loaded")
	}
}

func TestHealthCheckAll_OnlyLoaded(t *testing.T) {
	healthy := newFake("healthy")
	sick := newFake("sick")
	sick.healthy = false
	cold := newFake("cold")

	m, err := New(nil, healthy, sick, cold)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := healthy.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := sick.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	results := m.HealthCheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d health entries, want 2: %v", len(results), results)
	}
	if !results["healthy"] {
		t.Error("healthy evaluator reported unhealthy")
	}
	if results["sick"] {
		t.Error("sick evaluator reported healthy")
	}
	if _, present := results["cold"]; present {
		t.Error("unloaded evaluator present in health results")
	}
}

func TestSystemInfo(t *testing.T) {
	a := newFake("a")
	b := newFake("b")

	m, err := New(nil, a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.LoadAll(context.Background())

	info := m.SystemInfo()
	if info.IsLoading {
		t.Error("IsLoading true after LoadAll completed")
	}
	if len(info.Evaluators) != 2 {
		t.Fatalf("got %d evaluator infos, want 2", len(info.Evaluators))
	}
	if !info.Evaluators["a"].Loaded {
		t.Error("evaluator a not reported loaded")
	}
	if info.InitializationMS < 0 {
		t.Errorf("negative initialization duration: %v", info.InitializationMS)
	}
}
