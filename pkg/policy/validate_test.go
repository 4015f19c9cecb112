package policy

import (
	"errors"
	"reflect"
	"testing"
)

func validPolicy() *Policy {
	return &Policy{
		ID:       "test-policy",
		Name:     "Test Policy",
		Severity: SeverityMedium,
		Enabled:  true,
		Conditions: []Condition{
			{Type: ConditionKeywordFilter},
		},
		Actions: Actions{Type: "block"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr error
	}{
		{
			name:   "valid policy",
			mutate: func(p *Policy) {},
		},
		{
			name:    "missing id",
			mutate:  func(p *Policy) { p.ID = "" },
			wantErr: ErrMissingID,
		},
		{
			name:    "missing name",
			mutate:  func(p *Policy) { p.Name = "" },
			wantErr: ErrMissingName,
		},
		{
			name:    "invalid severity",
			mutate:  func(p *Policy) { p.Severity = "urgent" },
			wantErr: ErrInvalidSeverity,
		},
		{
			name:   "no conditions is legal",
			mutate: func(p *Policy) { p.Conditions = nil },
		},
		{
			name: "unrecognized condition type is legal",
			mutate: func(p *Policy) {
				p.Conditions = []Condition{{Type: "regex_entropy"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPolicy()
			tt.mutate(p)

			err := Validate(p)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_EmptyConditionType(t *testing.T) {
	p := validPolicy()
	p.Conditions = append(p.Conditions, Condition{})

	if err := Validate(p); err == nil {
		t.Fatal("expected error for empty condition type")
	}
}

func TestUnrecognizedConditions(t *testing.T) {
	p := validPolicy()
	p.Conditions = []Condition{
		{Type: "regex_entropy"},
		{Type: ConditionSemantic},
		{Type: "pii_scan"},
	}

	got := UnrecognizedConditions(p)
	want := []string{"regex_entropy", "pii_scan"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UnrecognizedConditions() = %v, want %v", got, want)
	}
}

func TestSeverityRank(t *testing.T) {
	if SeverityLow.Rank() >= SeverityMedium.Rank() {
		t.Error("low should rank below medium")
	}
	if SeverityHigh.Rank() >= SeverityCritical.Rank() {
		t.Error("high should rank below critical")
	}
	if Severity("bogus").Rank() <= SeverityLow.Rank() {
		t.Error("unknown severities must rank above low")
	}
}
