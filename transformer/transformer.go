package transformer

import (
	"time"

	"github.com/companieshouse/payment-status-poller/models"
	"github.com/companieshouse/payment-status-poller/poller"
)

// Transformer provides an interface by which to transform resolved states to outcome entities
type Transformer interface {
	GetOutcomeResource(sessionID string, state poller.State, source string) (models.PaymentOutcomeDao, error)
}

// Transform implements the Transformer interface
type Transform struct {
	Now func() time.Time
}

// New returns a new implementation of the Transformer interface
func New() *Transform {

	return &Transform{Now: time.Now}
}

// UnresolvedStateError is returned when asked to record a state that did not end its sequence
type UnresolvedStateError struct {
	phase poller.Phase
}

func (e *UnresolvedStateError) Error() string {
	return "cannot record unresolved payment state: " + e.phase.String()
}

// GetOutcomeResource transforms the final state of a sequence into an outcome entity
func (t *Transform) GetOutcomeResource(sessionID string, state poller.State, source string) (models.PaymentOutcomeDao, error) {

	if !state.Done() {
		return models.PaymentOutcomeDao{}, &UnresolvedStateError{state.Phase}
	}

	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	return models.PaymentOutcomeDao{
		SessionID:  sessionID,
		Status:     state.Status().String(),
		Attempts:   state.Attempt,
		Exhausted:  state.Exhausted(),
		Source:     source,
		ResolvedAt: now().UTC(),
	}, nil
}
