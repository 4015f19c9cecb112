// Package metrics defines Sentinel's Prometheus instrumentation.
//
// All metrics live in the "sentinel" namespace on a dedicated registry,
// exposed over HTTP by Handler. The Metrics value is constructed once at
// startup and shared by the gateway and the policy engine.
package metrics
