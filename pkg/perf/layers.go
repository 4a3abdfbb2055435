package perf

import (
	"fmt"
	"sync"

	"github.com/go-drift/motion/pkg/errors"
)

// LayerManager counts elements promoted to their own compositor layer and
// refuses promotions past the budget.
type LayerManager struct {
	mu     sync.Mutex
	limit  int
	layers map[any]struct{}
}

// NewLayerManager returns a manager allowing up to limit layers.
func NewLayerManager(limit int) *LayerManager {
	return &LayerManager{limit: limit, layers: make(map[any]struct{})}
}

// SetMax changes the layer limit. Existing layers are kept.
func (m *LayerManager) SetMax(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = n
}

// Request promotes key, which must be comparable. It returns false and
// reports KindBudgetExceeded when the limit is reached. Requesting a key that
// already holds a layer succeeds.
func (m *LayerManager) Request(key any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.layers[key]; ok {
		return true
	}
	if len(m.layers) >= m.limit {
		errors.Report(&errors.MotionError{
			Op:   "perf.LayerManager.Request",
			Kind: errors.KindBudgetExceeded,
			Err:  fmt.Errorf("GPU layer limit %d reached: %w", m.limit, errors.ErrBudgetExceeded),
		})
		return false
	}
	m.layers[key] = struct{}{}
	return true
}

// Release drops the layer held by key, if any.
func (m *LayerManager) Release(key any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.layers, key)
}

// Count returns the number of promoted layers.
func (m *LayerManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.layers)
}

// Usage reports the layer count for a budget report.
func (m *LayerManager) Usage() Usage {
	return Usage{GPULayers: m.Count()}
}
