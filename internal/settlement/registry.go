package settlement

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// Registry holds named settlement engines for selection by config. It is
// safe for concurrent use.
type Registry struct {
	settlers map[string]Settler
	mu       sync.RWMutex
}

// NewRegistry returns an empty registry. Call Register to add engines.
func NewRegistry() *Registry {
	return &Registry{settlers: make(map[string]Settler)}
}

// DefaultRegistry returns a registry holding both engines built from cfg.
func DefaultRegistry(cfg Config, logger *slog.Logger) *Registry {
	r := NewRegistry()
	r.Register(StrategyLogScore, NewLogScore(cfg, logger))
	r.Register(StrategyForce, NewForce(cfg, logger))
	return r
}

// Register adds an engine under the given name, replacing any previous one.
func (r *Registry) Register(name string, s Settler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settlers[name] = s
}

// Get returns the engine by name.
func (r *Registry) Get(name string) (Settler, error) {
	r.mu.RLock()
	s, ok := r.settlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", domain.ErrUnknownStrategy, name, r.List())
	}
	return s, nil
}

// List returns all registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.settlers))
	for n := range r.settlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
