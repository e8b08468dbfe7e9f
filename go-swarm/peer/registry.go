package peer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Registry maps strategy names to constructors. Peers built from an entry
// registered as a seed start with the whole file.
type Registry struct {
	sync.RWMutex
	entries map[string]entry
}

type entry struct {
	ctor Constructor
	seed bool
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// DefaultRegistry holds the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("Seed", NewSeed, true)
	r.Register("Dummy", NewDummy, false)
	r.Register("Std", NewStd, false)
	r.Register("Tyrant", NewTyrant, false)
	r.Register("Tourney", NewTourney, false)
	r.Register("PropShare", NewPropShare, false)
	return r
}

func (r *Registry) Register(name string, ctor Constructor, seed bool) {
	r.Lock()
	defer r.Unlock()

	r.entries[name] = entry{ctor: ctor, seed: seed}
}

func (r *Registry) Lookup(name string) (Constructor, bool, error) {
	r.RLock()
	defer r.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return e.ctor, e.seed, nil
}

func (r *Registry) Names() []string {
	r.RLock()
	defer r.RUnlock()

	names := []string{}
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
