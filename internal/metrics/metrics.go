// Package metrics is a tiny facade over an injectable metrics backend.
//
// The rest of the codebase calls the package-level functions and never
// depends on a vendor SDK. By default all calls are no-ops; main wires a
// real backend (see internal/metrics/datadog) via SetBackend.
package metrics

import "sync"

// Labels are metric dimensions, e.g. {"route": "/query", "status": "200"}.
type Labels map[string]string

// Backend receives metric events. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs the active backend. Passing nil restores the no-op
// backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		backend = nopBackend{}
		return
	}
	backend = b
}

// IncCounter adds delta to a named counter.
func IncCounter(name string, delta float64, labels Labels) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample of a named distribution.
func ObserveHistogram(name string, value float64, labels Labels) {
	mu.RLock()
	b := backend
	mu.RUnlock()
	b.ObserveHistogram(name, value, labels)
}

// Flush asks the active backend to submit buffered metrics now.
func Flush() error {
	mu.RLock()
	b := backend
	mu.RUnlock()
	return b.Flush()
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels) {}

func (nopBackend) ObserveHistogram(string, float64, Labels) {}

func (nopBackend) Flush() error { return nil }
