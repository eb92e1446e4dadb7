package commands

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds registered commands. Lookups ignore case.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Command // lowercased name and aliases
	cmds  []Command          // one entry per command, registration order
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Command)}
}

// Register adds a command to the registry.
// Returns an error if the name or any alias is already taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for i, k := range keys {
		keys[i] = strings.ToLower(k)
		if _, taken := r.byKey[keys[i]]; taken || slices.Contains(keys[:i], keys[i]) {
			if i == 0 {
				return fmt.Errorf("command already registered: %s", k)
			}
			return fmt.Errorf("command alias already registered: %s", k)
		}
	}

	for _, k := range keys {
		r.byKey[k] = c
	}
	r.cmds = append(r.cmds, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byKey[strings.ToLower(name)]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	out := slices.Clone(r.cmds)
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Command) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
