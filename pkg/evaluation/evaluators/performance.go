package evaluators

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	"sentinel-hq/sentinel/pkg/evaluation"
)

const (
	// maxMetricsHistory bounds the in-memory metrics history; when the
	// bound is hit the history is trimmed to keepMetricsHistory entries.
	maxMetricsHistory  = 1000
	keepMetricsHistory = 500
)

// metricsSample is one recorded efficiency measurement.
type metricsSample struct {
	Timestamp    time.Time
	LatencyMS    float64
	Efficiency   float64
	Completeness float64
	Overall      float64
}

// Performance scores response efficiency from latency and input/output
// shape heuristics. It implements evaluation.EfficiencyEvaluator and
// evaluation.PrimaryEvaluator.
type Performance struct {
	mu      sync.Mutex
	loaded  bool
	history []metricsSample
	logger  *slog.Logger
}

// NewPerformance creates an unloaded performance evaluator.
func NewPerformance() *Performance {
	return &Performance{
		logger: slog.Default().With("evaluator", "performance"),
	}
}

// Name returns the registry name for this evaluator.
func (e *Performance) Name() string { return "performance" }

// Load marks the evaluator ready. Idempotent when already loaded.
func (e *Performance) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}
	e.loaded = true
	e.logger.Info("evaluator loaded")
	return nil
}

// Unload clears the metrics history. Idempotent when already unloaded.
func (e *Performance) Unload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return nil
	}
	e.loaded = false
	e.history = nil
	e.logger.Info("evaluator unloaded")
	return nil
}

// Loaded reports whether the evaluator is loaded.
func (e *Performance) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// HealthCheck reports loaded state; this evaluator has no external
// resources to probe.
func (e *Performance) HealthCheck(ctx context.Context) bool {
	return e.Loaded()
}

// ModelInfo returns a snapshot of the evaluator's state.
func (e *Performance) ModelInfo() evaluation.ModelInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	var memory float64
	if e.loaded {
		memory = 10.0
	}

	return evaluation.ModelInfo{
		Name:          e.Name(),
		Version:       "1.0.0",
		SizeMB:        0.1,
		Loaded:        e.loaded,
		MemoryUsageMB: memory,
		Metadata: map[string]any{
			"model_type":    "heuristic_evaluator",
			"metrics":       []string{"latency", "efficiency", "completeness"},
			"requires_gpu":  false,
			"history_count": len(e.history),
		},
	}
}

// EvaluateEfficiency scores response efficiency against length, structure
// and repetition heuristics.
func (e *Performance) EvaluateEfficiency(ctx context.Context, req *evaluation.EvaluationRequest) (*evaluation.EvaluationResult, error) {
	if !e.Loaded() {
		return nil, evaluation.NotLoadedError(e.Name())
	}

	start := time.Now()

	input := req.InputText
	output := req.ActualOutput

	lengthRatio := float64(len(output)) / math.Max(float64(len(input)), 1)
	wordRatio := float64(wordCount(output)) / math.Max(float64(wordCount(input)), 1)

	hasPunctuation := strings.ContainsAny(output, ".!?")
	properCapitalization := startsUpper(output)
	noRepetition := !excessiveRepetition(output)

	efficiency := efficiencyScore(input, output)

	passed := lengthRatio >= 0.5 && lengthRatio <= 5.0 &&
		efficiency >= 0.6 &&
		hasPunctuation &&
		noRepetition

	latency := metadataFloat(req.Metadata, "latency_ms", 100.0)
	e.record(metricsSample{
		Timestamp:    time.Now(),
		LatencyMS:    latency,
		Efficiency:   efficiency,
		Completeness: completenessScore(output),
		Overall:      efficiency,
	})

	return &evaluation.EvaluationResult{
		Score:     efficiency,
		Passed:    passed,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Details: map[string]any{
			"length_ratio":          lengthRatio,
			"word_ratio":            wordRatio,
			"has_punctuation":       hasPunctuation,
			"proper_capitalization": properCapitalization,
			"no_repetition":         noRepetition,
			"input_length":          len(input),
			"output_length":         len(output),
		},
	}, nil
}

// EvaluateLatency checks a measured latency against a maximum.
func (e *Performance) EvaluateLatency(latencyMS, maxLatencyMS float64) (*evaluation.EvaluationResult, error) {
	if !e.Loaded() {
		return nil, evaluation.NotLoadedError(e.Name())
	}
	if maxLatencyMS <= 0 {
		maxLatencyMS = 5000
	}

	score := math.Max(0, (maxLatencyMS-latencyMS)/maxLatencyMS)

	return &evaluation.EvaluationResult{
		Score:     score,
		Passed:    latencyMS <= maxLatencyMS,
		LatencyMS: 0.1,
		Details: map[string]any{
			"actual_latency_ms":    latencyMS,
			"max_latency_ms":       maxLatencyMS,
			"latency_ratio":        latencyMS / maxLatencyMS,
			"performance_category": categorizeLatency(latencyMS),
		},
	}, nil
}

// EvaluatePrimary runs the headline efficiency operation.
func (e *Performance) EvaluatePrimary(ctx context.Context, req *evaluation.EvaluationRequest) (*evaluation.EvaluationResult, error) {
	return e.EvaluateEfficiency(ctx, req)
}

// record appends a sample to the bounded metrics history.
func (e *Performance) record(sample metricsSample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, sample)
	if len(e.history) > maxMetricsHistory {
		trimmed := make([]metricsSample, keepMetricsHistory)
		copy(trimmed, e.history[len(e.history)-keepMetricsHistory:])
		e.history = trimmed
	}
}

// HistoryLen returns the number of recorded metrics samples.
func (e *Performance) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// efficiencyScore combines length appropriateness, word count, and
// structure indicators into a single score in [0, 1].
func efficiencyScore(input, output string) float64 {
	if output == "" {
		return 0.0
	}

	var scores []float64

	if len(input) > 0 {
		ratio := float64(len(output)) / float64(len(input))
		var lengthScore float64
		switch {
		case ratio >= 1 && ratio <= 3:
			lengthScore = 1.0
		case (ratio >= 0.5 && ratio < 1) || (ratio > 3 && ratio <= 5):
			lengthScore = 0.7
		default:
			lengthScore = math.Max(0, 0.5-math.Abs(ratio-2)*0.1)
		}
		scores = append(scores, lengthScore)
	}

	switch wc := wordCount(output); {
	case wc >= 3:
		scores = append(scores, 0.8)
	case wc >= 1:
		scores = append(scores, 0.4)
	default:
		scores = append(scores, 0.0)
	}

	structure := 0.5
	if strings.ContainsAny(output, ".!?") {
		structure += 0.2
	}
	if startsUpper(output) {
		structure += 0.1
	}
	if !excessiveRepetition(output) {
		structure += 0.2
	}
	scores = append(scores, math.Min(structure, 1.0))

	return mean(scores)
}

// completenessScore rates whether text looks like a finished response.
func completenessScore(text string) float64 {
	if text == "" {
		return 0.0
	}

	score := 0.5
	trimmed := strings.TrimRight(text, " \t\n")
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		score += 0.3
	}
	if wordCount(text) >= 5 {
		score += 0.2
	}
	return math.Min(score, 1.0)
}

// excessiveRepetition reports whether any single word makes up more than a
// third of a response of ten or more words.
func excessiveRepetition(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) < 10 {
		return false
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
		if counts[w]*3 > len(words) {
			return true
		}
	}
	return false
}

func categorizeLatency(latencyMS float64) string {
	switch {
	case latencyMS < 100:
		return "excellent"
	case latencyMS < 500:
		return "good"
	case latencyMS < 2000:
		return "acceptable"
	default:
		return "slow"
	}
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func startsUpper(text string) bool {
	for _, r := range text {
		return unicode.IsUpper(r)
	}
	return false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
