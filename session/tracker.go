// Package session owns the status shown to a buyer returning from checkout.
//
// A Tracker follows at most one status resolution sequence at a time. Every
// sequence is tagged with a generation; states from a generation that is no
// longer current are dropped, so a buyer who has moved on never sees a late
// result from an abandoned sequence.
package session

import (
	"context"
	"sync"

	"github.com/companieshouse/chs.go/log"
	"github.com/companieshouse/payment-status-poller/config"
	"github.com/companieshouse/payment-status-poller/credentials"
	"github.com/companieshouse/payment-status-poller/dao"
	"github.com/companieshouse/payment-status-poller/data"
	"github.com/companieshouse/payment-status-poller/keys"
	"github.com/companieshouse/payment-status-poller/models"
	"github.com/companieshouse/payment-status-poller/poller"
	"github.com/companieshouse/payment-status-poller/transformer"
)

// Names of the two top level views
const (
	ViewPayment  = "payment"
	ViewProducts = "products"
)

const exhaustedMessageKey = "exhausted"

// View is the rendering of the tracker's current state
type View struct {
	View      string             `json:"view"`
	SessionID string             `json:"session_id,omitempty"`
	Status    data.PaymentStatus `json:"status,omitempty"`
	Exhausted bool               `json:"exhausted,omitempty"`
	Title     string             `json:"title,omitempty"`
	Message   string             `json:"message,omitempty"`
	Icon      string             `json:"icon,omitempty"`
}

// Tracker holds the single current payment status
type Tracker struct {
	Resolver    poller.Resolver
	Credentials credentials.Source
	Messages    *config.StatusMessages
	DAO         dao.DAO
	Transformer transformer.Transformer

	mu         sync.Mutex
	generation uint64
	sessionID  string
	state      poller.State
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewTracker returns a Tracker. DAO may be nil, in which case outcomes are not recorded.
func NewTracker(resolver poller.Resolver, creds credentials.Source, messages *config.StatusMessages, d dao.DAO) *Tracker {
	return &Tracker{
		Resolver:    resolver,
		Credentials: creds,
		Messages:    messages,
		DAO:         d,
		Transformer: transformer.New(),
	}
}

// Start begins tracking sessionID. Starting the session that is already tracked
// does nothing; starting a different one abandons the current sequence.
func (t *Tracker) Start(sessionID string) error {
	if sessionID == "" {
		return poller.ErrEmptySessionID
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil && t.sessionID == sessionID {
		return nil
	}

	t.abandon()
	t.generation++
	gen := t.generation

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.sessionID = sessionID
	t.state = poller.State{Phase: poller.PhaseLoading}
	t.cancel = cancel
	t.done = done

	log.Info("tracking payment status", log.Data{keys.SessionID: sessionID, keys.Generation: gen})

	states := t.Resolver.Resolve(ctx, sessionID, t.Credentials)
	go t.follow(gen, sessionID, states, done)

	return nil
}

// Continue clears the tracked session and abandons its sequence, returning the
// buyer to the product view.
func (t *Tracker) Continue() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sessionID != "" {
		log.Info("continuing to products", log.Data{keys.SessionID: t.sessionID, keys.Generation: t.generation})
	}

	t.abandon()
	t.generation++
	t.sessionID = ""
	t.state = poller.State{}
}

// View renders the current state
func (t *Tracker) View() View {
	t.mu.Lock()
	sessionID, state := t.sessionID, t.state
	t.mu.Unlock()

	if sessionID == "" {
		return View{View: ViewProducts}
	}

	v := View{
		View:      ViewPayment,
		SessionID: sessionID,
		Status:    state.Status(),
		Exhausted: state.Exhausted(),
	}

	key := v.Status.String()
	if v.Exhausted {
		key = exhaustedMessageKey
	}
	if t.Messages != nil {
		if m, ok := t.Messages.Views[key]; ok {
			v.Title, v.Message, v.Icon = m.Title, m.Message, m.Icon
		}
	}

	return v
}

// Done is closed when the current sequence has been fully consumed. With no
// current sequence it is already closed.
func (t *Tracker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return t.done
}

// abandon must be called with mu held
func (t *Tracker) abandon() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.done = nil
}

func (t *Tracker) follow(gen uint64, sessionID string, states <-chan poller.State, done chan struct{}) {
	defer close(done)

	var last poller.State
	for s := range states {
		if !t.apply(gen, s) {
			continue
		}
		last = s
	}

	if last.Done() && t.isCurrent(gen) {
		t.record(sessionID, last)
	}
}

func (t *Tracker) apply(gen uint64, s poller.State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		log.Debug("discarding state from abandoned sequence", log.Data{keys.Generation: gen, keys.Status: s.Status()})
		return false
	}
	t.state = s
	return true
}

func (t *Tracker) isCurrent(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return gen == t.generation
}

func (t *Tracker) record(sessionID string, s poller.State) {
	if t.DAO == nil || t.Transformer == nil {
		return
	}

	outcome, err := t.Transformer.GetOutcomeResource(sessionID, s, models.SourceStorefront)
	if err != nil {
		log.Error(err, log.Data{keys.SessionID: sessionID})
		return
	}

	if err := t.DAO.CreatePaymentOutcomeResource(&outcome); err != nil {
		log.Error(err, log.Data{keys.Message: "failed to record payment outcome", keys.SessionID: sessionID})
	}
}
