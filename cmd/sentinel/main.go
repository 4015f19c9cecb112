// Sentinel is a policy enforcement gateway for LLM traffic.
//
// It sits between applications and LLM providers, evaluating every chat
// completion request against configurable policies before forwarding it:
//   - Keyword, content safety, and semantic similarity policy conditions
//   - Allow / warn / block decisions with per-violation detail
//   - Batch evaluation across all loaded evaluators with summary statistics
//   - Prometheus metrics and scheduled evaluator health sweeps
//
// Usage:
//
//	# Start the gateway with default configuration
//	sentinel run
//
//	# Start with a custom configuration file
//	sentinel run --config /etc/sentinel/config.yaml
//
//	# Validate a policy file
//	sentinel lint --file policies.yaml
//
//	# Show version information
//	sentinel version
package main

func main() {
	Execute()
}
