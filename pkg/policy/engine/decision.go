package engine

import "sentinel-hq/sentinel/pkg/policy"

// DecideForPolicy applies a single policy's action to its violation set.
// No violations means allow; otherwise the action type selects the
// decision, defaulting to block for anything other than "warn".
func DecideForPolicy(p *policy.Policy, violations []policy.Violation) policy.Decision {
	if len(violations) == 0 {
		return policy.DecisionAllow
	}

	switch p.Actions.Type {
	case "block":
		return policy.DecisionBlock
	case "warn":
		return policy.DecisionWarn
	default:
		// Fail closed on missing or unrecognized action types.
		return policy.DecisionBlock
	}
}

// OverallDecision combines violations from any number of policies into one
// decision:
//
//   - no violations: allow
//   - any critical violation: block
//   - every violation low: warn
//   - anything else: block
//
// The per-policy actions do not participate here; only the violation
// severities do.
func OverallDecision(violations []policy.Violation) policy.Decision {
	if len(violations) == 0 {
		return policy.DecisionAllow
	}

	allLow := true
	for _, v := range violations {
		if v.Severity == policy.SeverityCritical {
			return policy.DecisionBlock
		}
		if v.Severity != policy.SeverityLow {
			allLow = false
		}
	}

	if allLow {
		return policy.DecisionWarn
	}
	return policy.DecisionBlock
}
