// Package engine turns policies plus a request into an allow/warn/block
// decision.
//
// The engine evaluates each policy's conditions in declared order by
// dispatching to the evaluator registered under the condition's type name.
// Failed evaluations become violations; the policy's action (or, across
// multiple policies, the severity of the combined violation set) selects
// the decision. Both rules are fail-closed: an unrecognized action and any
// non-trivial severity mix default to block.
//
// A condition whose evaluator is not loaded is a hard engine failure, never
// a silent pass.
package engine
