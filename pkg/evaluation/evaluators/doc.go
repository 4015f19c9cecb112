// Package evaluators contains the concrete evaluator implementations:
// semantic similarity, content safety, keyword filtering, and performance
// scoring. Each implements the capability interfaces in pkg/evaluation and
// owns its internal state exclusively.
//
// The scoring internals here are heuristic stand-ins behind the capability
// seam; a deployment can swap any of them for a model-backed implementation
// without touching the engine.
package evaluators
