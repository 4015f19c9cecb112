// Package policy defines the policy data model shared by the store, the
// evaluation engine, and the gateway: policies with ordered typed
// conditions and an action, violations, severities, and the final
// allow/warn/block decision.
package policy
