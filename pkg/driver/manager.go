package driver

import (
	"errors"
	"sort"
	"sync"
)

var errUnsupportedAdapter = errors.New("driver: adapter has to implement VideoRecorder")

// FilterFn is being used to decide if a driver should be included in the
// query result.
type FilterFn func(Driver) bool

// FilterVideoRecorder returns a filter function to get video recorders
func FilterVideoRecorder() FilterFn {
	return func(d Driver) bool {
		_, ok := d.(VideoRecorder)
		return ok
	}
}

// FilterID returns a filter function to find a driver by its ID.
func FilterID(id string) FilterFn {
	return func(d Driver) bool {
		return d.ID() == id
	}
}

// FilterDeviceType returns a filter function to match a driver by its device type
func FilterDeviceType(t DeviceType) FilterFn {
	return func(d Driver) bool {
		return d.Info().DeviceType == t
	}
}

// FilterNot returns a filter function to invert the filter result.
func FilterNot(filter FilterFn) FilterFn {
	return func(d Driver) bool {
		return !filter(d)
	}
}

// FilterAnd returns a filter function to take logical conjunction of given filters.
func FilterAnd(filters ...FilterFn) FilterFn {
	return func(d Driver) bool {
		for _, f := range filters {
			if !f(d) {
				return false
			}
		}
		return true
	}
}

// Manager is a singleton to manage multiple drivers and their states
type Manager struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

var manager = NewManager()

// NewManager creates an empty Manager. Most callers want GetManager.
func NewManager() *Manager {
	return &Manager{drivers: make(map[string]Driver)}
}

// GetManager gets manager singleton instance.
func GetManager() *Manager {
	return manager
}

// Register wraps a and makes it visible to Query.
func (m *Manager) Register(a Adapter, info Info) error {
	d := wrapAdapter(a, info)
	if d == nil {
		return errUnsupportedAdapter
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID()] = d
	return nil
}

// Query queries by using f to filter drivers, and simply return the filtered results.
// Results are ordered by label so that repeated queries are stable.
func (m *Manager) Query(f FilterFn) []Driver {
	m.mu.RLock()
	results := make([]Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if f(d) {
			results = append(results, d)
		}
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		li, lj := results[i].Info().Label, results[j].Info().Label
		if li != lj {
			return li < lj
		}
		return results[i].ID() < results[j].ID()
	})
	return results
}
