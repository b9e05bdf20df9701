// Package poller resolves the outcome of a checkout session by polling the
// shop's status API until the payment completes, fails or the attempt budget
// runs out.
package poller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/companieshouse/chs.go/log"
	"github.com/companieshouse/payment-status-poller/config"
	"github.com/companieshouse/payment-status-poller/credentials"
	"github.com/companieshouse/payment-status-poller/data"
	"github.com/companieshouse/payment-status-poller/keys"
	"github.com/companieshouse/payment-status-poller/status"
)

// ErrEmptySessionID is the failure cause when no session id is supplied
var ErrEmptySessionID = errors.New("session id must not be empty")

// Resolver provides an interface by which to resolve the payment status of a session
type Resolver interface {
	Resolve(ctx context.Context, sessionID string, creds credentials.Source) <-chan State
}

// Poller implements Resolver against the status API
type Poller struct {
	Fetcher      status.Fetcher
	Client       *http.Client
	StatusAPIURL string
	Clock        clock.Clock
	Machine      Machine
	Interval     time.Duration
}

// New returns a Poller configured from cfg
func New(cfg *config.Config) *Poller {
	return &Poller{
		Fetcher:      status.New(),
		Client:       &http.Client{},
		StatusAPIURL: cfg.StatusAPIURL,
		Clock:        clock.New(),
		Machine:      Machine{MaxAttempts: cfg.PollMaxAttempts},
		Interval:     cfg.PollInterval(),
	}
}

// Resolve starts a status resolution sequence for sessionID. States are
// delivered in order on the returned channel, which is closed when the
// sequence ends or ctx is cancelled. Nothing is queried until the initial
// loading state has been received. Once ctx is cancelled no further state is
// delivered.
func (p *Poller) Resolve(ctx context.Context, sessionID string, creds credentials.Source) <-chan State {
	out := make(chan State)
	go p.run(ctx, sessionID, creds, out)
	return out
}

func (p *Poller) run(ctx context.Context, sessionID string, creds credentials.Source, out chan<- State) {
	defer close(out)

	state, action := p.Machine.Start()
	if !emit(ctx, out, state) {
		return
	}

	if sessionID == "" {
		log.Error(ErrEmptySessionID)
		emit(ctx, out, State{Phase: PhaseFailed, Err: ErrEmptySessionID})
		return
	}

	var timer *clock.Timer
	for {
		switch action {
		case ActionQuery:
			state, action = p.Machine.Next(state, p.query(ctx, sessionID, creds, state.Attempt+1))
			if action == ActionWait {
				// the timer is armed before the state is handed over so the
				// delay runs from the end of this query
				timer = p.clk().Timer(p.interval())
			}
			if !emit(ctx, out, state) {
				if timer != nil {
					timer.Stop()
				}
				return
			}
			if state.Done() {
				log.Info("Payment status resolved", log.Data{keys.SessionID: sessionID, keys.Status: state.Status(), keys.Attempt: state.Attempt, keys.Exhausted: state.Exhausted()})
			}

		case ActionWait:
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			timer = nil
			if ctx.Err() != nil {
				return
			}
			state, action = p.Machine.Next(state, Event{Kind: TimerFired})

		default:
			return
		}
	}
}

func (p *Poller) query(ctx context.Context, sessionID string, creds credentials.Source, attempt int) Event {
	token := ""
	if creds != nil {
		token = creds.Token()
	}

	logData := log.Data{keys.SessionID: sessionID, keys.Attempt: attempt, keys.MaxAttempts: p.Machine.maxAttempts()}
	log.Debug("Querying payment status", logData)

	res, statusCode, err := p.Fetcher.GetStatus(ctx, status.StatusURL(p.StatusAPIURL, sessionID), p.Client, token)
	if err != nil {
		if ctx.Err() == nil {
			logData[keys.StatusCode] = statusCode
			log.Error(err, logData)
		}
		return Event{Kind: QueryResult, Err: err}
	}

	s, err := data.ParseStatus(res.Status)
	if err != nil {
		err = &status.MalformedResponseError{Err: err}
		log.Error(err, logData)
		return Event{Kind: QueryResult, Err: err}
	}

	logData[keys.Status] = s
	log.Info("Payment status received", logData)
	return Event{Kind: QueryResult, Status: s}
}

func (p *Poller) clk() clock.Clock {
	if p.Clock == nil {
		return clock.New()
	}
	return p.Clock
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultInterval
	}
	return p.Interval
}

// emit hands s to the consumer unless ctx has been cancelled first
func emit(ctx context.Context, out chan<- State, s State) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

// Last drains states and returns the final one. ok is false when the sequence
// was cancelled before it finished.
func Last(states <-chan State) (last State, ok bool) {
	for s := range states {
		last = s
	}
	return last, last.Done()
}
