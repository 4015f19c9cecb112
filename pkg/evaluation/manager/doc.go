// Package manager owns the evaluator registry and its lifecycle.
//
// The Manager holds exactly one instance per evaluator name and guarantees
// that "loaded" is a meaningful precondition for every engine operation.
// Loads and unloads run concurrently across evaluators; an individual
// evaluator's failure is captured in a LoadResult rather than aborting the
// others.
package manager
