package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"sentinel-hq/sentinel/pkg/config"
)

var (
	// ErrUnknownProvider is returned when a request names a provider the
	// registry does not hold.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoDefaultProvider is returned when a request names no provider
	// and no provider is configured as the default.
	ErrNoDefaultProvider = errors.New("no default provider configured")
)

// ChatMessage is one message in a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

// UserText returns the content of the last user message, which is the text
// policies are evaluated against.
func (r ChatRequest) UserText() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Usage reports upstream token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is a provider-neutral chat completion response.
type ChatResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// Provider is one upstream LLM API.
type Provider interface {
	// Name returns the configured provider name.
	Name() string

	// ChatCompletion forwards the request upstream and returns the first
	// choice.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Registry holds the configured providers.
type Registry struct {
	providers   map[string]Provider
	defaultName string
}

// NewRegistry builds a Registry from the provider configuration. Every
// configured provider becomes an OpenAI-compatible client.
func NewRegistry(cfgs map[string]config.ProviderConfig) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(cfgs))}

	for name, cfg := range cfgs {
		r.providers[name] = NewOpenAI(name, cfg)
		if cfg.Default {
			if r.defaultName != "" {
				return nil, fmt.Errorf("providers %q and %q both marked default", r.defaultName, name)
			}
			r.defaultName = name
		}
	}

	// A single configured provider is implicitly the default.
	if r.defaultName == "" && len(r.providers) == 1 {
		for name := range r.providers {
			r.defaultName = name
		}
	}

	return r, nil
}

// Get returns the named provider, or the default when name is empty.
func (r *Registry) Get(name string) (Provider, error) {
	if name == "" {
		if r.defaultName == "" {
			return nil, ErrNoDefaultProvider
		}
		name = r.defaultName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", name, ErrUnknownProvider)
	}
	return p, nil
}

// Names returns the configured provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
