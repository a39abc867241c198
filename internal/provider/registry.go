package provider

import (
	"context"
	"errors"
	"sync"
)

// Registry manages multiple LLM providers with fallback support.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	defaultID string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// SetDefault sets the default provider by ID.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[id]; !ok {
		return ErrProviderNotFound
	}
	r.defaultID = id
	return nil
}

// Get retrieves a provider by ID.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

// GetDefault retrieves the default provider.
func (r *Registry) GetDefault() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultID == "" {
		return nil, ErrProviderNotFound
	}
	return r.providers[r.defaultID], nil
}

// Chat sends a request to the default provider.
func (r *Registry) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	p, err := r.GetDefault()
	if err != nil {
		return nil, err
	}
	return p.Chat(ctx, req)
}

// ChatWithFallback tries the given providers in order until one succeeds.
// Cancellation stops the chain immediately.
func (r *Registry) ChatWithFallback(ctx context.Context, req *ChatRequest, providerIDs []string) (*ChatResponse, error) {
	var lastErr error
	for _, id := range providerIDs {
		p, err := r.Get(id)
		if err != nil {
			lastErr = err
			continue
		}
		resp, err := p.Chat(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrProviderNotFound
}

// List returns IDs of all registered providers.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	return ids
}
