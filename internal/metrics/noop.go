package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncNoteCreated()         {}
func (n *NoopRecorder) IncNoteUpdated()         {}
func (n *NoopRecorder) IncNoteDeleted()         {}
func (n *NoopRecorder) IncSynthesisCreated()    {}
func (n *NoopRecorder) IncSynthesisDeleted()    {}
func (n *NoopRecorder) IncRegistration()        {}
func (n *NoopRecorder) IncLogin(outcome string) {}
func (n *NoopRecorder) IncRateLimited()         {}

func (n *NoopRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {}
