package bench

import (
	"sync"
	"time"
)

// Measurement is a named, resolved duration derived from a span.
type Measurement struct {
	Name     string
	Duration time.Duration
}

// DurationMs returns the measured duration in fractional milliseconds.
func (m Measurement) DurationMs() float64 {
	return float64(m.Duration) / float64(time.Millisecond)
}

// Snapshot is the complete view of a Metrics mapping at the time it was published. Labels and
// Values are index-aligned with Entries, in first-seen order.
type Snapshot struct {
	Entries []Measurement
	Labels  []string
	Values  []float64
}

// Len returns the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

// Lookup returns the duration recorded under name, if any.
func (s Snapshot) Lookup(name string) (time.Duration, bool) {
	for _, entry := range s.Entries {
		if entry.Name == name {
			return entry.Duration, true
		}
	}

	return 0, false
}

// Metrics is an ordered mapping from measurement name to duration. A name keeps the position at
// which it was first set; setting it again replaces the value in place (latest run wins).
type Metrics struct {
	names  []string
	values map[string]time.Duration
	mutex  sync.RWMutex
}

// NewMetrics creates an empty Metrics mapping.
func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]time.Duration)}
}

// Set records a duration under name, replacing any earlier value.
func (m *Metrics) Set(name string, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.set(name, duration)
}

// Get returns the duration recorded under name.
func (m *Metrics) Get(name string) (time.Duration, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	duration, ok := m.values[name]
	return duration, ok
}

// Len returns the number of distinct names in the mapping.
func (m *Metrics) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.names)
}

// Clear removes every entry, including the remembered ordering.
func (m *Metrics) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.names = nil
	m.values = make(map[string]time.Duration)
}

// Snapshot copies the full mapping into index-aligned label and value lists.
func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snapshot := Snapshot{
		Entries: make([]Measurement, 0, len(m.names)),
		Labels:  make([]string, 0, len(m.names)),
		Values:  make([]float64, 0, len(m.names)),
	}

	for _, name := range m.names {
		entry := Measurement{Name: name, Duration: m.values[name]}

		snapshot.Entries = append(snapshot.Entries, entry)
		snapshot.Labels = append(snapshot.Labels, name)
		snapshot.Values = append(snapshot.Values, entry.DurationMs())
	}

	return snapshot
}

// merge copies every entry of a snapshot into the mapping under a single lock acquisition.
func (m *Metrics) merge(entries []Measurement) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, entry := range entries {
		m.set(entry.Name, entry.Duration)
	}
}

func (m *Metrics) set(name string, duration time.Duration) {
	if m.values == nil {
		m.values = make(map[string]time.Duration)
	}

	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}

	m.values[name] = duration
}
