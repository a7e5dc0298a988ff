package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry holds the transcription providers built at startup. The first
// registered provider becomes the default unless SetDefault says otherwise.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Transcriber
	defaultID string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Transcriber),
	}
}

// Register adds a provider under the given name.
func (r *Registry) Register(name string, t Transcriber) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if t == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s is already registered", name)
	}

	r.providers[name] = t

	// First one in becomes the default.
	if r.defaultID == "" {
		r.defaultID = name
	}
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Transcriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	return t, nil
}

// Default returns the default provider.
func (r *Registry) Default() (Transcriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultID == "" {
		return nil, fmt.Errorf("no providers registered")
	}
	return r.providers[r.defaultID], nil
}

// DefaultName returns the name of the default provider, or "" when the
// registry is empty.
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}

// SetDefault changes which provider Default returns.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("provider %s not found", name)
	}
	r.defaultID = name
	return nil
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Infos returns the Info of every registered provider, ordered by name.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]Info, 0, len(names))
	for _, name := range names {
		infos = append(infos, r.providers[name].Info())
	}
	return infos
}

// HealthCheckAll probes every provider concurrently and returns a map of
// provider name to the error it reported, nil meaning healthy.
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	snapshot := make(map[string]Transcriber, len(r.providers))
	for name, t := range r.providers {
		snapshot[name] = t
	}
	r.mu.RUnlock()

	results := make(map[string]error, len(snapshot))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for name, t := range snapshot {
		wg.Add(1)
		go func(name string, t Transcriber) {
			defer wg.Done()
			err := t.HealthCheck(ctx)
			resultsMu.Lock()
			results[name] = err
			resultsMu.Unlock()
		}(name, t)
	}

	wg.Wait()
	return results
}
