package evaluators

import (
	"context"
	"errors"
	"testing"

	"sentinel-hq/sentinel/pkg/evaluation"
)

func TestContentSafety_Evaluate(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		metadata   map[string]any
		wantPassed bool
	}{
		{
			name:       "benign text passes",
			text:       "Please summarize this article about gardening.",
			wantPassed: true,
		},
		{
			name:       "toxic text fails",
			text:       "you are a worthless pathetic loser",
			wantPassed: false,
		},
		{
			name:       "threat fails",
			text:       "i will kill you if you do that again",
			wantPassed: false,
		},
		{
			name:       "strict threshold fails single indicator",
			text:       "that movie was stupid",
			metadata:   map[string]any{"toxicity_threshold": 0.1},
			wantPassed: false,
		},
	}

	e := NewContentSafety()
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := evaluation.NewRequest(tt.text, "", "", tt.metadata)
			result, err := e.EvaluateContentSafety(context.Background(), req)
			if err != nil {
				t.Fatalf("EvaluateContentSafety: %v", err)
			}
			if result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v (details: %v)", result.Passed, tt.wantPassed, result.Details)
			}
		})
	}
}

func TestContentSafety_NotLoaded(t *testing.T) {
	e := NewContentSafety()
	req := evaluation.NewRequest("anything", "", "", nil)

	_, err := e.EvaluateContentSafety(context.Background(), req)
	if !errors.Is(err, evaluation.ErrNotLoaded) {
		t.Fatalf("err = %v, want ErrNotLoaded", err)
	}
}

func TestContentSafety_ScoresCoverAllLabels(t *testing.T) {
	e := NewContentSafety()
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	scores := e.checkToxicity("hello")
	if len(scores) != len(toxicityLabels) {
		t.Fatalf("got %d label scores, want %d", len(scores), len(toxicityLabels))
	}
	for label, score := range scores {
		if score != 0 {
			t.Errorf("benign text scored %v for %q", score, label)
		}
	}
}
