// Package handlers implements the gateway's HTTP endpoints: policy-checked
// chat completions, policy CRUD, comprehensive evaluation, and system
// introspection.
package handlers
