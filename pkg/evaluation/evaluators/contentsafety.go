package evaluators

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sentinel-hq/sentinel/pkg/evaluation"
)

// DefaultToxicityThreshold is applied when the request metadata carries no
// "toxicity_threshold" entry.
const DefaultToxicityThreshold = 0.5

// toxicityLabels are the categories the safety classifier scores,
// mirroring the standard toxicity taxonomy.
var toxicityLabels = []string{
	"toxic", "severe_toxic", "obscene", "threat", "insult", "identity_hate",
}

// toxicityLexicon maps each label to indicator terms. Each hit contributes
// 0.4 to that label's score, capped at 1.0.
var toxicityLexicon = map[string][]string{
	"toxic":         {"hate", "stupid", "idiot", "trash", "garbage person"},
	"severe_toxic":  {"die in", "deserve to die", "subhuman"},
	"obscene":       {"fuck", "shit", "bitch", "asshole"},
	"threat":        {"i will kill", "i will hurt", "watch your back", "you will pay"},
	"insult":        {"moron", "loser", "pathetic", "worthless"},
	"identity_hate": {"nazi", "racist slur", "go back to your country"},
}

// ContentSafety scores text toxicity against a lexicon of indicator terms.
// It implements evaluation.SafetyEvaluator.
type ContentSafety struct {
	mu        sync.RWMutex
	loaded    bool
	modelName string
	lexicon   map[string][]string
	logger    *slog.Logger
}

// NewContentSafety creates an unloaded content safety evaluator.
func NewContentSafety() *ContentSafety {
	return &ContentSafety{
		modelName: "toxicity-lexicon-v1",
		logger:    slog.Default().With("evaluator", "content_safety"),
	}
}

// Name returns the registry name for this evaluator.
func (e *ContentSafety) Name() string { return "content_safety" }

// Load builds the toxicity lexicon. Idempotent when already loaded.
func (e *ContentSafety) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	start := time.Now()

	lexicon := make(map[string][]string, len(toxicityLexicon))
	for label, terms := range toxicityLexicon {
		lowered := make([]string, len(terms))
		for i, t := range terms {
			lowered[i] = strings.ToLower(t)
		}
		lexicon[label] = lowered
	}
	e.lexicon = lexicon
	e.loaded = true

	e.logger.Info("evaluator loaded",
		"model", e.modelName,
		"labels", len(e.lexicon),
		"duration", time.Since(start),
	)
	return nil
}

// Unload drops the lexicon. Idempotent when already unloaded.
func (e *ContentSafety) Unload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return nil
	}

	e.lexicon = nil
	e.loaded = false
	e.logger.Info("evaluator unloaded")
	return nil
}

// Loaded reports whether the evaluator is loaded.
func (e *ContentSafety) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// HealthCheck classifies a benign probe text and expects no toxicity.
func (e *ContentSafety) HealthCheck(ctx context.Context) bool {
	if !e.Loaded() {
		return false
	}
	scores := e.checkToxicity("health check")
	for _, s := range scores {
		if s > 0 {
			return false
		}
	}
	return true
}

// ModelInfo returns a snapshot of the evaluator's state.
func (e *ContentSafety) ModelInfo() evaluation.ModelInfo {
	loaded := e.Loaded()

	var memory float64
	if loaded {
		memory = 2.0
	}

	return evaluation.ModelInfo{
		Name:          e.Name(),
		Version:       "1.0.0",
		SizeMB:        0.2,
		Loaded:        loaded,
		MemoryUsageMB: memory,
		Metadata: map[string]any{
			"model_type":         "toxicity_classifier",
			"model":              e.modelName,
			"labels":             toxicityLabels,
			"supports_languages": []string{"en"},
		},
	}
}

// checkToxicity scores text against every label in the lexicon. Scores are
// in [0, 1] per label.
func (e *ContentSafety) checkToxicity(text string) map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	lower := strings.ToLower(text)
	scores := make(map[string]float64, len(e.lexicon))

	for label, terms := range e.lexicon {
		var hits int
		for _, term := range terms {
			if strings.Contains(lower, term) {
				hits++
			}
		}
		score := float64(hits) * 0.4
		if score > 1.0 {
			score = 1.0
		}
		scores[label] = score
	}
	return scores
}

// EvaluateContentSafety scores the request's input text and passes when the
// worst label score stays below the threshold.
func (e *ContentSafety) EvaluateContentSafety(ctx context.Context, req *evaluation.EvaluationRequest) (*evaluation.EvaluationResult, error) {
	if !e.Loaded() {
		return nil, evaluation.NotLoadedError(e.Name())
	}

	start := time.Now()

	scores := e.checkToxicity(req.InputText)

	var maxToxicity float64
	for _, s := range scores {
		if s > maxToxicity {
			maxToxicity = s
		}
	}

	threshold := metadataFloat(req.Metadata, "toxicity_threshold", DefaultToxicityThreshold)

	return &evaluation.EvaluationResult{
		Score:     1.0 - maxToxicity,
		Passed:    maxToxicity < threshold,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Details: map[string]any{
			"toxicity_scores": scores,
			"max_toxicity":    maxToxicity,
			"threshold":       threshold,
			"method":          "toxicity_classification",
			"model":           e.modelName,
			"text_length":     len(req.InputText),
		},
	}, nil
}
