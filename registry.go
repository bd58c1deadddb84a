package gfxcard

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// DriverFactory creates a driver instance.
type DriverFactory func() (Driver, error)

// RegistryEntry represents a registered driver.
type RegistryEntry struct {
	// Name is the unique identifier for this driver.
	Name string

	// Priority determines probing order (higher = preferred). Drivers for
	// real engines use 100, virtual and software drivers 10.
	Priority int

	// Factory creates driver instances.
	Factory DriverFactory

	// Available reports if the hardware the driver needs is present.
	Available func() bool
}

// Registry manages registered drivers.
//
// Drivers register themselves from init so that importing a driver
// package is enough to make it available to Open:
//
//	func init() {
//	    gfxcard.RegisterDriver("virtual", 10, factory, nil)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// globalRegistry is the registry used by Open.
var globalRegistry = &Registry{}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// RegisterDriver adds a driver to the global registry. If available is nil
// the driver is assumed always available. Registering a name that already
// exists replaces the previous entry.
func RegisterDriver(name string, priority int, factory DriverFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// UnregisterDriver removes a driver from the global registry.
func UnregisterDriver(name string) {
	globalRegistry.Unregister(name)
}

// Drivers returns the names of all available drivers, highest priority
// first.
func Drivers() []string {
	return globalRegistry.Available()
}

// Register adds a driver to this registry.
func (r *Registry) Register(name string, priority int, factory DriverFactory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	e := &RegistryEntry{Name: name, Priority: priority, Factory: factory, Available: available}

	r.mu.Lock()
	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	r.entries[name] = e
	r.mu.Unlock()
}

// Unregister removes a driver from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.entries, name)
	r.mu.Unlock()
}

// List returns all registered driver names sorted by priority.
func (r *Registry) List() []string {
	return names(r.ordered(false))
}

// Available returns names of all available drivers sorted by priority.
func (r *Registry) Available() []string {
	return names(r.ordered(true))
}

// Get returns a copy of the entry for a driver.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	e := r.lookup(name)
	if e == nil {
		return nil, false
	}
	c := *e
	return &c, true
}

// Probe creates the best available driver. Drivers whose factory fails are
// skipped; if none succeeds the factory errors are returned joined.
func (r *Registry) Probe() (Driver, error) {
	candidates := r.ordered(true)
	if len(candidates) == 0 {
		return nil, ErrNoDriver
	}

	var errs []error
	for _, e := range candidates {
		d, err := e.Factory()
		if err == nil {
			return d, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
	}
	return nil, errors.Join(errs...)
}

// Create instantiates the named driver.
func (r *Registry) Create(name string) (Driver, error) {
	e := r.lookup(name)
	switch {
	case e == nil:
		return nil, &DriverNotFoundError{Name: name}
	case !e.Available():
		return nil, &DriverUnavailableError{Name: name}
	}
	return e.Factory()
}

func (r *Registry) lookup(name string) *RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[name]
}

// ordered snapshots the entries, highest priority first and by name within
// a priority. Availability is probed outside the registry lock.
func (r *Registry) ordered(onlyAvailable bool) []*RegistryEntry {
	r.mu.RLock()
	all := slices.Collect(maps.Values(r.entries))
	r.mu.RUnlock()

	if onlyAvailable {
		all = slices.DeleteFunc(all, func(e *RegistryEntry) bool { return !e.Available() })
	}
	slices.SortFunc(all, func(a, b *RegistryEntry) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return all
}

func names(entries []*RegistryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

// Errors.
var (
	// ErrNoDriver is returned by Open when no driver is registered or
	// available.
	ErrNoDriver = errors.New("gfxcard: no driver available")

	// ErrLockTimeout is returned when the hardware lock could not be taken
	// in time.
	ErrLockTimeout = errors.New("gfxcard: hardware lock timeout")

	// ErrClosed is returned by operations on a closed card.
	ErrClosed = errors.New("gfxcard: card closed")
)

// DriverNotFoundError indicates a named driver is not registered.
type DriverNotFoundError struct {
	Name string
}

func (e *DriverNotFoundError) Error() string {
	return "gfxcard: driver not found: " + e.Name
}

// DriverUnavailableError indicates a driver exists but its hardware is
// missing.
type DriverUnavailableError struct {
	Name string
}

func (e *DriverUnavailableError) Error() string {
	return "gfxcard: driver unavailable: " + e.Name
}
