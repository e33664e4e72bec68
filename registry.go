package aurora

import (
	"fmt"
	"slices"
	"sync"
)

// Registered backend names.
const (
	BackendSoftware = "software"
	BackendGPU      = "gpu"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() (Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)

	// Priority order for DefaultBackend (first that initializes wins).
	backendPriority = []string{BackendGPU, BackendSoftware}
)

func init() {
	RegisterBackend(BackendSoftware, func() (Backend, error) {
		return NewSoftwareBackend(), nil
	})
}

// RegisterBackend registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// A backend with the same name is replaced.
func RegisterBackend(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// UnregisterBackend removes a backend from the registry.
func UnregisterBackend(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Backends returns the sorted names of registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// LookupBackend creates the backend registered under name.
func LookupBackend(name string) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("aurora: backend %q: %w", name, err)
	}
	return b, nil
}

// DefaultBackend returns the first backend in priority order (gpu, then
// software) whose factory succeeds. The software backend is always
// available.
func DefaultBackend() Backend {
	for _, name := range backendPriority {
		b, err := LookupBackend(name)
		if err == nil {
			return b
		}
		Logger().Debug("backend unavailable", "backend", name, "err", err)
	}
	return NewSoftwareBackend()
}
