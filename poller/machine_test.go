package poller

import (
	"errors"
	"testing"

	"github.com/companieshouse/payment-status-poller/data"
	. "github.com/smartystreets/goconvey/convey"
)

func queryResult(s data.PaymentStatus) Event {
	return Event{Kind: QueryResult, Status: s}
}

func TestUnitMachine(t *testing.T) {

	m := Machine{MaxAttempts: 4}

	Convey("A sequence starts loading and queries first", t, func() {
		s, a := m.Start()
		So(s.Phase, ShouldEqual, PhaseLoading)
		So(s.Status(), ShouldEqual, data.StatusLoading)
		So(a, ShouldEqual, ActionQuery)
	})

	Convey("Given a loading state", t, func() {
		s, _ := m.Start()

		Convey("completed is terminal", func() {
			next, a := m.Next(s, queryResult(data.StatusCompleted))
			So(next.Phase, ShouldEqual, PhaseCompleted)
			So(next.Attempt, ShouldEqual, 1)
			So(a, ShouldEqual, ActionStop)
		})

		Convey("failed is terminal", func() {
			next, a := m.Next(s, queryResult(data.StatusFailed))
			So(next.Phase, ShouldEqual, PhaseFailed)
			So(next.Err, ShouldBeNil)
			So(a, ShouldEqual, ActionStop)
		})

		Convey("pending waits before the next query", func() {
			next, a := m.Next(s, queryResult(data.StatusPending))
			So(next.Phase, ShouldEqual, PhasePending)
			So(a, ShouldEqual, ActionWait)

			Convey("and the timer leads to another query", func() {
				after, a := m.Next(next, Event{Kind: TimerFired})
				So(after, ShouldResemble, next)
				So(a, ShouldEqual, ActionQuery)
			})
		})

		Convey("a query error fails without retrying", func() {
			cause := errors.New("connection refused")
			next, a := m.Next(s, Event{Kind: QueryResult, Err: cause})
			So(next.Phase, ShouldEqual, PhaseFailed)
			So(next.Err, ShouldEqual, cause)
			So(a, ShouldEqual, ActionStop)
		})

		Convey("an unknown status fails with a cause", func() {
			next, a := m.Next(s, queryResult(data.PaymentStatus("refunded")))
			So(next.Phase, ShouldEqual, PhaseFailed)
			So(next.Err, ShouldNotBeNil)
			So(a, ShouldEqual, ActionStop)
		})
	})

	Convey("Pending on the last attempt is exhausted, not failed", t, func() {
		s := State{Phase: PhasePending, Attempt: 3}
		next, a := m.Next(s, queryResult(data.StatusPending))
		So(next.Phase, ShouldEqual, PhaseExhausted)
		So(next.Attempt, ShouldEqual, 4)
		So(next.Exhausted(), ShouldBeTrue)
		So(next.Status(), ShouldEqual, data.StatusPending)
		So(a, ShouldEqual, ActionStop)
	})

	Convey("Finished states absorb every event", t, func() {
		for _, s := range []State{{Phase: PhaseCompleted, Attempt: 1}, {Phase: PhaseFailed, Attempt: 2}, {Phase: PhaseExhausted, Attempt: 4}} {
			next, a := m.Next(s, queryResult(data.StatusPending))
			So(next, ShouldResemble, s)
			So(a, ShouldEqual, ActionStop)

			next, a = m.Next(s, Event{Kind: TimerFired})
			So(next, ShouldResemble, s)
			So(a, ShouldEqual, ActionStop)
		}
	})

	Convey("A zero machine uses the default budget", t, func() {
		s := State{Phase: PhasePending, Attempt: DefaultMaxAttempts - 2}
		next, a := Machine{}.Next(s, queryResult(data.StatusPending))
		So(next.Phase, ShouldEqual, PhasePending)
		So(a, ShouldEqual, ActionWait)

		next, a = Machine{}.Next(next, queryResult(data.StatusPending))
		So(next.Phase, ShouldEqual, PhaseExhausted)
		So(a, ShouldEqual, ActionStop)
	})

	Convey("Phases have readable names", t, func() {
		So(PhaseExhausted.String(), ShouldEqual, "exhausted")
		So(Phase(99).String(), ShouldEqual, "unknown")
	})
}
