package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	NotesCreated      uint64
	NotesUpdated      uint64
	NotesDeleted      uint64
	SynthesesCreated  uint64
	SynthesesDeleted  uint64
	Registrations     uint64
	Logins            map[string]uint64
	RateLimited       uint64
	HTTPRequests      uint64
	HTTPDurationTotal time.Duration
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	notesCreated     uint64
	notesUpdated     uint64
	notesDeleted     uint64
	synthesesCreated uint64
	synthesesDeleted uint64
	registrations    uint64
	rateLimited      uint64
	httpRequests     uint64
	httpDurationNs   int64

	mu     sync.Mutex
	logins map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{logins: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	logins := make(map[string]uint64, len(m.logins))
	for k, v := range m.logins {
		logins[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		NotesCreated:      atomic.LoadUint64(&m.notesCreated),
		NotesUpdated:      atomic.LoadUint64(&m.notesUpdated),
		NotesDeleted:      atomic.LoadUint64(&m.notesDeleted),
		SynthesesCreated:  atomic.LoadUint64(&m.synthesesCreated),
		SynthesesDeleted:  atomic.LoadUint64(&m.synthesesDeleted),
		Registrations:     atomic.LoadUint64(&m.registrations),
		Logins:            logins,
		RateLimited:       atomic.LoadUint64(&m.rateLimited),
		HTTPRequests:      atomic.LoadUint64(&m.httpRequests),
		HTTPDurationTotal: time.Duration(atomic.LoadInt64(&m.httpDurationNs)),
	}
}

func (m *InMemoryRecorder) IncNoteCreated()      { atomic.AddUint64(&m.notesCreated, 1) }
func (m *InMemoryRecorder) IncNoteUpdated()      { atomic.AddUint64(&m.notesUpdated, 1) }
func (m *InMemoryRecorder) IncNoteDeleted()      { atomic.AddUint64(&m.notesDeleted, 1) }
func (m *InMemoryRecorder) IncSynthesisCreated() { atomic.AddUint64(&m.synthesesCreated, 1) }
func (m *InMemoryRecorder) IncSynthesisDeleted() { atomic.AddUint64(&m.synthesesDeleted, 1) }
func (m *InMemoryRecorder) IncRegistration()     { atomic.AddUint64(&m.registrations, 1) }
func (m *InMemoryRecorder) IncRateLimited()      { atomic.AddUint64(&m.rateLimited, 1) }

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	m.logins[outcome]++
	m.mu.Unlock()
}

// ObserveHTTPRequest records one served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.httpRequests, 1)
	atomic.AddInt64(&m.httpDurationNs, duration.Nanoseconds())
}
