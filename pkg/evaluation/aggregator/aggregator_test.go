package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-hq/sentinel/pkg/evaluation"
	"sentinel-hq/sentinel/pkg/evaluation/evaluators"
	"sentinel-hq/sentinel/pkg/evaluation/manager"
)

// brokenPrimary fails its evaluate operation after a configurable number of
// successful results.
type brokenPrimary struct {
	failAfter int
	calls     int
	loaded    bool
}

func (b *brokenPrimary) Name() string                     { return "broken" }
func (b *brokenPrimary) Load(ctx context.Context) error   { b.loaded = true; return nil }
func (b *brokenPrimary) Unload(ctx context.Context) error { b.loaded = false; return nil }
func (b *brokenPrimary) Loaded() bool                     { return b.loaded }
func (b *brokenPrimary) HealthCheck(ctx context.Context) bool {
	return b.loaded
}
func (b *brokenPrimary) ModelInfo() evaluation.ModelInfo {
	return evaluation.ModelInfo{Name: "broken", Loaded: b.loaded}
}
func (b *brokenPrimary) EvaluatePrimary(ctx context.Context, req *evaluation.EvaluationRequest) (*evaluation.EvaluationResult, error) {
	b.calls++
	if b.calls > b.failAfter {
		return nil, errors.New("backend went away")
	}
	return &evaluation.EvaluationResult{Score: 0.9, Passed: true}, nil
}

func batch(n int) []*evaluation.EvaluationRequest {
	reqs := make([]*evaluation.EvaluationRequest, n)
	for i := range reqs {
		reqs[i] = evaluation.NewRequest(
			"What is the capital of France?",
			"Paris is the capital of France.",
			"Paris is the capital of France.",
			nil,
		)
	}
	return reqs
}

func TestEvaluateComprehensive_EmptyBatch(t *testing.T) {
	m, err := manager.New(nil, evaluators.NewSemantic())
	require.NoError(t, err)

	agg := New(m, nil)
	_, err = agg.EvaluateComprehensive(context.Background(), nil, false, nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestEvaluateComprehensive_SingleEvaluator(t *testing.T) {
	sem := evaluators.NewSemantic()
	m, err := manager.New(nil, sem)
	require.NoError(t, err)
	require.NoError(t, sem.Load(context.Background()))

	agg := New(m, nil)
	report, err := agg.EvaluateComprehensive(context.Background(), batch(5), false, nil)
	require.NoError(t, err)

	require.Len(t, report.Evaluations["semantic"], 5)
	summary := report.Summary["semantic"]
	assert.Equal(t, 5, summary.TotalTests)
	assert.GreaterOrEqual(t, summary.PassRate, 0.0)
	assert.LessOrEqual(t, summary.PassRate, 1.0)
	assert.Contains(t, report.Timing, "semantic_ms")
	assert.Contains(t, report.Timing, "total_ms")
	assert.Empty(t, report.Error)
}

func TestEvaluateComprehensive_SkipsUnloadedAndNonPrimary(t *testing.T) {
	sem := evaluators.NewSemantic()            // loaded, primary
	perf := evaluators.NewPerformance()        // unloaded, primary
	kw := evaluators.NewKeywordFilter(evaluators.KeywordFilterConfig{}) // loaded, not primary

	m, err := manager.New(nil, sem, perf, kw)
	require.NoError(t, err)
	require.NoError(t, sem.Load(context.Background()))
	require.NoError(t, kw.Load(context.Background()))

	agg := New(m, nil)
	report, err := agg.EvaluateComprehensive(context.Background(), batch(2), false, nil)
	require.NoError(t, err)

	assert.Contains(t, report.Evaluations, "semantic")
	assert.NotContains(t, report.Evaluations, "performance")
	assert.NotContains(t, report.Evaluations, "keyword_filter")
}

func TestEvaluateComprehensive_PartialFailure(t *testing.T) {
	sem := evaluators.NewSemantic()
	broken := &brokenPrimary{failAfter: 1}

	m, err := manager.New(nil, sem, broken)
	require.NoError(t, err)
	require.NoError(t, sem.Load(context.Background()))
	require.NoError(t, broken.Load(context.Background()))

	agg := New(m, nil)
	report, err := agg.EvaluateComprehensive(context.Background(), batch(3), false, nil)
	require.NoError(t, err, "sub-task failures must not fail the run")

	// The healthy evaluator finished the whole batch.
	assert.Len(t, report.Evaluations["semantic"], 3)

	// The broken evaluator kept its partial results and reported the error.
	assert.Len(t, report.Evaluations["broken"], 1)
	assert.Contains(t, report.Error, "broken")
	assert.Contains(t, report.Error, "backend went away")
}

func TestEvaluateComprehensive_RegressionMarker(t *testing.T) {
	sem := evaluators.NewSemantic()
	m, err := manager.New(nil, sem)
	require.NoError(t, err)
	require.NoError(t, sem.Load(context.Background()))

	agg := New(m, nil)

	baseline := []*evaluation.EvaluationResult{{Score: 0.5, Passed: true}}
	report, err := agg.EvaluateComprehensive(context.Background(), batch(1), true, baseline)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "not_implemented"}, report.Regression)

	// Flag without a baseline does not trigger the marker.
	report, err = agg.EvaluateComprehensive(context.Background(), batch(1), true, nil)
	require.NoError(t, err)
	assert.Nil(t, report.Regression)
}
