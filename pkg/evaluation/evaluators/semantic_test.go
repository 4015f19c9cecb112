package evaluators

import (
	"context"
	"testing"

	"sentinel-hq/sentinel/pkg/evaluation"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		text1 string
		text2 string
		want  func(float64) bool
	}{
		{
			name:  "identical texts",
			text1: "the quick brown fox",
			text2: "the quick brown fox",
			want:  func(s float64) bool { return s > 0.999 },
		},
		{
			name:  "disjoint texts",
			text1: "alpha beta gamma",
			text2: "one two three",
			want:  func(s float64) bool { return s == 0.0 },
		},
		{
			name:  "partial overlap",
			text1: "the cat sat on the mat",
			text2: "the dog sat on the rug",
			want:  func(s float64) bool { return s > 0.3 && s < 0.9 },
		},
		{
			name:  "case and punctuation insensitive",
			text1: "Hello, World!",
			text2: "hello world",
			want:  func(s float64) bool { return s > 0.999 },
		},
		{
			name:  "empty text",
			text1: "",
			text2: "anything",
			want:  func(s float64) bool { return s == 0.0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.text1, tt.text2)
			if !tt.want(got) {
				t.Errorf("cosineSimilarity(%q, %q) = %v", tt.text1, tt.text2, got)
			}
		})
	}
}

func TestSemantic_EvaluateSemanticMatch(t *testing.T) {
	e := NewSemantic()
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	req := evaluation.NewRequest("", "Paris is the capital of France", "Paris is the capital of France", nil)
	result, err := e.EvaluateSemanticMatch(context.Background(), req)
	if err != nil {
		t.Fatalf("EvaluateSemanticMatch: %v", err)
	}
	if !result.Passed {
		t.Errorf("identical texts did not pass: score=%v", result.Score)
	}

	req = evaluation.NewRequest("", "Paris is the capital of France", "bananas are yellow", nil)
	result, err = e.EvaluateSemanticMatch(context.Background(), req)
	if err != nil {
		t.Fatalf("EvaluateSemanticMatch: %v", err)
	}
	if result.Passed {
		t.Errorf("unrelated texts passed: score=%v", result.Score)
	}
}

func TestSemantic_ThresholdFromMetadata(t *testing.T) {
	e := NewSemantic()
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Low threshold lets a weak match pass.
	req := evaluation.NewRequest("", "the cat sat on the mat", "the dog sat on the rug",
		map[string]any{"thresholds": 0.1})
	result, err := e.EvaluateSemanticMatch(context.Background(), req)
	if err != nil {
		t.Fatalf("EvaluateSemanticMatch: %v", err)
	}
	if !result.Passed {
		t.Errorf("weak match did not pass low threshold: score=%v", result.Score)
	}
}

func TestSemantic_NotLoaded(t *testing.T) {
	e := NewSemantic()
	req := evaluation.NewRequest("a", "b", "c", nil)

	if _, err := e.EvaluateSemanticMatch(context.Background(), req); err == nil {
		t.Fatal("expected error from unloaded evaluator")
	}
	if _, err := e.CalculateSimilarity("a", "b"); err == nil {
		t.Fatal("expected error from unloaded evaluator")
	}
}
