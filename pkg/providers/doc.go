// Package providers forwards chat completion requests to upstream LLM
// APIs.
//
// A Provider is the gateway's only view of an upstream: a name and a
// ChatCompletion call. The Registry holds the configured providers and
// picks the default when a request names none. Anything speaking the
// OpenAI chat completions wire format is supported through a configurable
// base URL.
package providers
