// Package middleware provides the gateway's HTTP middleware chain:
// request IDs, structured request logging, and panic recovery.
package middleware
