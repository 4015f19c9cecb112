package evaluators

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"sentinel-hq/sentinel/pkg/evaluation"
)

// DefaultKeywordThreshold is applied when the request metadata carries no
// "keyword_threshold" entry. Severity accumulates at 0.3 per hit, so the
// default blocks on the first match.
const DefaultKeywordThreshold = 0.1

// defaultBannedKeywords seeds the filter when no custom list is configured.
var defaultBannedKeywords = []string{
	// Violence
	"kill", "murder", "bomb", "terrorist", "attack",
	// Drugs
	"cocaine", "heroin", "meth",
	// Abuse
	"nazi", "racist", "bigot",
	// Fraud
	"spam", "scam", "phishing",
}

// KeywordFilter matches banned keywords and regular-expression patterns in
// request text. It implements evaluation.KeywordEvaluator.
type KeywordFilter struct {
	mu     sync.RWMutex
	loaded bool

	// configured lists, fixed at construction
	keywordList []string
	patternList []string

	// compiled state, built on Load
	keywords map[string]struct{}
	patterns []*regexp.Regexp

	logger *slog.Logger
}

// KeywordFilterConfig customizes the banned lists. Zero value uses the
// built-in defaults.
type KeywordFilterConfig struct {
	// Keywords replaces the default banned keyword list when non-empty.
	Keywords []string

	// Patterns is a list of case-insensitive regular expressions to match
	// in addition to the keyword list.
	Patterns []string
}

// NewKeywordFilter creates an unloaded keyword filter evaluator.
func NewKeywordFilter(cfg KeywordFilterConfig) *KeywordFilter {
	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = defaultBannedKeywords
	}
	return &KeywordFilter{
		keywordList: keywords,
		patternList: cfg.Patterns,
		logger:      slog.Default().With("evaluator", "keyword_filter"),
	}
}

// Name returns the registry name for this evaluator.
func (e *KeywordFilter) Name() string { return "keyword_filter" }

// Load builds the keyword set and compiles the configured patterns.
// Idempotent when already loaded. Fails if any pattern does not compile.
func (e *KeywordFilter) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	start := time.Now()

	keywords := make(map[string]struct{}, len(e.keywordList))
	for _, kw := range e.keywordList {
		keywords[strings.ToLower(kw)] = struct{}{}
	}

	patterns := make([]*regexp.Regexp, 0, len(e.patternList))
	for _, p := range e.patternList {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return fmt.Errorf("compiling banned pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	e.keywords = keywords
	e.patterns = patterns
	e.loaded = true

	e.logger.Info("evaluator loaded",
		"keywords", len(e.keywords),
		"patterns", len(e.patterns),
		"duration", time.Since(start),
	)
	return nil
}

// Unload clears the compiled lists. Idempotent when already unloaded.
func (e *KeywordFilter) Unload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		return nil
	}

	e.keywords = nil
	e.patterns = nil
	e.loaded = false
	e.logger.Info("evaluator unloaded")
	return nil
}

// Loaded reports whether the evaluator is loaded.
func (e *KeywordFilter) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// HealthCheck runs the filter against a benign probe text.
func (e *KeywordFilter) HealthCheck(ctx context.Context) bool {
	if !e.Loaded() {
		return false
	}
	found, _, _ := e.checkKeywords("This is a test message.")
	return len(found) == 0
}

// ModelInfo returns a snapshot of the evaluator's state.
func (e *KeywordFilter) ModelInfo() evaluation.ModelInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var memory float64
	if e.loaded {
		memory = 1.0
	}

	return evaluation.ModelInfo{
		Name:          e.Name(),
		Version:       "1.0.0",
		SizeMB:        0.1,
		Loaded:        e.loaded,
		MemoryUsageMB: memory,
		Metadata: map[string]any{
			"model_type":            "keyword_filter",
			"banned_keywords_count": len(e.keywords),
			"banned_patterns_count": len(e.patterns),
			"supports_languages":    []string{"en"},
		},
	}
}

// checkKeywords scans text for banned keywords and patterns. Severity
// accumulates at 0.3 per hit, capped at 1.0.
func (e *KeywordFilter) checkKeywords(text string) (foundKeywords, foundPatterns []string, severity float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	lower := strings.ToLower(text)
	for kw := range e.keywords {
		if strings.Contains(lower, kw) {
			foundKeywords = append(foundKeywords, kw)
		}
	}
	sort.Strings(foundKeywords)

	for _, re := range e.patterns {
		if re.MatchString(text) {
			foundPatterns = append(foundPatterns, re.String())
		}
	}

	severity = float64(len(foundKeywords)+len(foundPatterns)) * 0.3
	if severity > 1.0 {
		severity = 1.0
	}
	return foundKeywords, foundPatterns, severity
}

// EvaluateKeywordFilter checks the request's input text against the banned
// lists. Passes when the accumulated severity stays below the threshold.
func (e *KeywordFilter) EvaluateKeywordFilter(ctx context.Context, req *evaluation.EvaluationRequest) (*evaluation.EvaluationResult, error) {
	if !e.Loaded() {
		return nil, evaluation.NotLoadedError(e.Name())
	}

	start := time.Now()

	foundKeywords, foundPatterns, severity := e.checkKeywords(req.InputText)
	threshold := metadataFloat(req.Metadata, "keyword_threshold", DefaultKeywordThreshold)

	if foundKeywords == nil {
		foundKeywords = []string{}
	}
	if foundPatterns == nil {
		foundPatterns = []string{}
	}

	return &evaluation.EvaluationResult{
		Score:     1.0 - severity,
		Passed:    severity < threshold,
		LatencyMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Details: map[string]any{
			"found_keywords":   foundKeywords,
			"found_patterns":   foundPatterns,
			"severity_score":   severity,
			"threshold":        threshold,
			"method":           "keyword_filtering",
			"text_length":      len(req.InputText),
			"total_violations": len(foundKeywords) + len(foundPatterns),
		},
	}, nil
}
