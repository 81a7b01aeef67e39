// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidCredentials = "invalid_credentials"
	LoginInactive           = "inactive"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Note and synthesis lifecycle
	IncNoteCreated()
	IncNoteUpdated()
	IncNoteDeleted()
	IncSynthesisCreated()
	IncSynthesisDeleted()

	// Authentication
	IncRegistration()
	IncLogin(outcome string)

	// HTTP boundary
	IncRateLimited()
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
