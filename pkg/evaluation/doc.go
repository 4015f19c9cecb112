// Package evaluation defines the shared data model and capability contract
// for content and quality evaluators.
//
// An Evaluator is a pluggable unit with a load/unload lifecycle, a health
// check, and one or more typed evaluate operations. The policy engine and
// the comprehensive aggregator depend only on the interfaces in this
// package, never on concrete evaluator types.
package evaluation
