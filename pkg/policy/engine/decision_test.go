package engine

import (
	"testing"

	"pgregory.net/rapid"

	"sentinel-hq/sentinel/pkg/policy"
)

func TestOverallDecision_Table(t *testing.T) {
	v := func(s policy.Severity) policy.Violation {
		return policy.Violation{Severity: s}
	}

	tests := []struct {
		name       string
		violations []policy.Violation
		want       policy.Decision
	}{
		{"empty", nil, policy.DecisionAllow},
		{"single low", []policy.Violation{v(policy.SeverityLow)}, policy.DecisionWarn},
		{"all low", []policy.Violation{v(policy.SeverityLow), v(policy.SeverityLow)}, policy.DecisionWarn},
		{"single medium", []policy.Violation{v(policy.SeverityMedium)}, policy.DecisionBlock},
		{"low and high", []policy.Violation{v(policy.SeverityLow), v(policy.SeverityHigh)}, policy.DecisionBlock},
		{"critical among lows", []policy.Violation{v(policy.SeverityLow), v(policy.SeverityCritical), v(policy.SeverityLow)}, policy.DecisionBlock},
		{"unknown severity", []policy.Violation{v("bogus")}, policy.DecisionBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallDecision(tt.violations); got != tt.want {
				t.Errorf("OverallDecision() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOverallDecision_Properties(t *testing.T) {
	severities := []policy.Severity{
		policy.SeverityLow, policy.SeverityMedium, policy.SeverityHigh, policy.SeverityCritical,
	}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		violations := make([]policy.Violation, n)

		hasCritical := false
		allLow := true
		for i := range violations {
			s := rapid.SampledFrom(severities).Draw(t, "severity")
			violations[i] = policy.Violation{Severity: s}
			if s == policy.SeverityCritical {
				hasCritical = true
			}
			if s != policy.SeverityLow {
				allLow = false
			}
		}

		got := OverallDecision(violations)
		switch {
		case n == 0:
			if got != policy.DecisionAllow {
				t.Fatalf("empty set: got %s", got)
			}
		case hasCritical:
			if got != policy.DecisionBlock {
				t.Fatalf("critical present: got %s", got)
			}
		case allLow:
			if got != policy.DecisionWarn {
				t.Fatalf("all low: got %s", got)
			}
		default:
			if got != policy.DecisionBlock {
				t.Fatalf("mixed severities: got %s", got)
			}
		}
	})
}

func TestDecideForPolicy(t *testing.T) {
	violated := []policy.Violation{{Severity: policy.SeverityLow}}

	tests := []struct {
		name       string
		action     string
		violations []policy.Violation
		want       policy.Decision
	}{
		{"no violations", "block", nil, policy.DecisionAllow},
		{"block action", "block", violated, policy.DecisionBlock},
		{"warn action", "warn", violated, policy.DecisionWarn},
		{"missing action", "", violated, policy.DecisionBlock},
		{"unknown action", "escalate", violated, policy.DecisionBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &policy.Policy{ID: "p", Actions: policy.Actions{Type: tt.action}}
			if got := DecideForPolicy(p, tt.violations); got != tt.want {
				t.Errorf("DecideForPolicy() = %s, want %s", got, tt.want)
			}
		})
	}
}
