// Package aggregator fans a batch of evaluation requests out to every
// loaded evaluator with a primary evaluate operation and computes summary
// statistics over the per-evaluator results.
//
// Per-evaluator sub-tasks run concurrently with each other; within one
// sub-task the batch is processed sequentially. A failure inside one
// sub-task is recorded in the report and never aborts the others.
package aggregator
