// Package audit provides an audit trail of topology-controller ticks and host-agent
// verb invocations.
package audit

import (
	"fmt"
	"time"
)

// Event represents one auditable action: a controller tick commit or a single
// Host Agent verb invocation.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Tick      int64     `json:"tick"`
	MachineID int       `json:"machine_id,omitempty"`
	Verb      string    `json:"verb"`
	Added     int       `json:"added,omitempty"`
	Updated   int       `json:"updated,omitempty"`
	Deleted   int       `json:"deleted,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Severity indicates the importance of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Filter defines criteria for querying audit events.
type Filter struct {
	Tick        int64
	MachineID   int
	Verb        string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event for the given tick and verb.
func NewEvent(tick int64, machineID int, verb string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		Tick:      tick,
		MachineID: machineID,
		Verb:      verb,
	}
}

// WithLinkCounts records the size of the applied change-set.
func (e *Event) WithLinkCounts(added, updated, deleted int) *Event {
	e.Added = added
	e.Updated = updated
	e.Deleted = deleted
	return e
}

// WithSuccess marks the event as successful.
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration sets how long the verb took to apply.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
