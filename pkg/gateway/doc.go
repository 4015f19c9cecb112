// Package gateway assembles the Sentinel HTTP server: routes, middleware
// chain, and graceful lifecycle around the policy engine, evaluator
// manager, and provider registry.
package gateway
