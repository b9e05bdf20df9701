package poller

import (
	"time"

	"github.com/companieshouse/payment-status-poller/data"
)

const (
	// DefaultMaxAttempts is the number of status queries issued before giving up on a pending payment
	DefaultMaxAttempts = 4
	// DefaultInterval is the delay between status queries while a payment is pending
	DefaultInterval = 3000 * time.Millisecond
)

// Phase is the position of a sequence in the status resolution state machine
type Phase int

const (
	PhaseLoading Phase = iota
	PhasePending
	PhaseCompleted
	PhaseFailed
	// PhaseExhausted is reached when the attempt budget runs out while the
	// payment is still pending. It is displayed as pending.
	PhaseExhausted
)

var phaseNames = map[Phase]string{
	PhaseLoading:   "loading",
	PhasePending:   "pending",
	PhaseCompleted: "completed",
	PhaseFailed:    "failed",
	PhaseExhausted: "exhausted",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// State is a single emission of a status resolution sequence
type State struct {
	Phase Phase
	// Attempt is the number of status queries answered so far
	Attempt int
	// Err is the cause of a failure. It is for logging only and never shown to the user.
	Err error
}

// Status is the payment status to display for the state
func (s State) Status() data.PaymentStatus {
	switch s.Phase {
	case PhasePending, PhaseExhausted:
		return data.StatusPending
	case PhaseCompleted:
		return data.StatusCompleted
	case PhaseFailed:
		return data.StatusFailed
	}
	return data.StatusLoading
}

// Exhausted reports the soft timeout: still pending with no attempts left
func (s State) Exhausted() bool {
	return s.Phase == PhaseExhausted
}

// Done reports whether the sequence ends with this state
func (s State) Done() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseFailed || s.Phase == PhaseExhausted
}

// EventKind distinguishes the inputs that drive the state machine
type EventKind int

const (
	QueryResult EventKind = iota
	TimerFired
)

// Event is an input to Machine.Next
type Event struct {
	Kind   EventKind
	Status data.PaymentStatus
	Err    error
}

// Action is what the sequence must do after a transition
type Action int

const (
	ActionQuery Action = iota
	ActionWait
	ActionStop
)

// Machine holds the transition rules for one status resolution sequence
type Machine struct {
	MaxAttempts int
}

func (m Machine) maxAttempts() int {
	if m.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return m.MaxAttempts
}

// Start returns the initial state and action of a sequence
func (m Machine) Start() (State, Action) {
	return State{Phase: PhaseLoading}, ActionQuery
}

// Next is the transition function. Finished states absorb every event.
func (m Machine) Next(s State, ev Event) (State, Action) {
	if s.Done() {
		return s, ActionStop
	}

	if ev.Kind == TimerFired {
		return s, ActionQuery
	}

	attempt := s.Attempt + 1
	if ev.Err != nil {
		return State{Phase: PhaseFailed, Attempt: attempt, Err: ev.Err}, ActionStop
	}

	switch ev.Status {
	case data.StatusCompleted:
		return State{Phase: PhaseCompleted, Attempt: attempt}, ActionStop
	case data.StatusFailed:
		return State{Phase: PhaseFailed, Attempt: attempt}, ActionStop
	case data.StatusPending:
		if attempt >= m.maxAttempts() {
			return State{Phase: PhaseExhausted, Attempt: attempt}, ActionStop
		}
		return State{Phase: PhasePending, Attempt: attempt}, ActionWait
	}

	_, err := data.ParseStatus(string(ev.Status))
	return State{Phase: PhaseFailed, Attempt: attempt, Err: err}, ActionStop
}
