package audit

import (
	"errors"
	"sync"
	"time"
)

// Entry is one mutation performed by the operator.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Actor     string            `json:"actor,omitempty"`
	Operation string            `json:"operation"`
	TargetID  uint64            `json:"target_id"`
	Params    map[string]string `json:"params,omitempty"`
	Outcome   string            `json:"outcome,omitempty"`
}

// Recorder is a session-scoped, append-only trail of the mutations this
// operator performed. It is advisory only: it never calls the remote service,
// is best-effort, and is lost when the session ends. Server-side audit, if
// required, is the remote service's job.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends unconditionally. Entries are never mutated or removed.
func (r *Recorder) Record(e Entry) error {
	if e.Operation == "" {
		return errors.New("audit entry needs an operation")
	}
	if e.TargetID == 0 {
		return errors.New("audit entry needs a target id")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// Entries returns a newest-first copy for display. Storage order stays
// insertion order.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[len(r.entries)-1-i] = e
	}
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
