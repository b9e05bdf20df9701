package transformer

import (
	"testing"
	"time"

	"github.com/companieshouse/payment-status-poller/models"
	"github.com/companieshouse/payment-status-poller/poller"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUnitGetOutcomeResource(t *testing.T) {

	resolvedAt := time.Date(2025, 1, 14, 10, 12, 41, 0, time.UTC)
	transformerUnderTest := Transform{Now: func() time.Time { return resolvedAt }}

	Convey("A completed state becomes a completed outcome", t, func() {
		outcome, err := transformerUnderTest.GetOutcomeResource("cs_1", poller.State{Phase: poller.PhaseCompleted, Attempt: 3}, models.SourceStorefront)
		So(err, ShouldBeNil)
		So(outcome, ShouldResemble, models.PaymentOutcomeDao{
			SessionID:  "cs_1",
			Status:     "completed",
			Attempts:   3,
			Source:     models.SourceStorefront,
			ResolvedAt: resolvedAt,
		})
	})

	Convey("An exhausted state is recorded as pending and exhausted", t, func() {
		outcome, err := transformerUnderTest.GetOutcomeResource("cs_1", poller.State{Phase: poller.PhaseExhausted, Attempt: 4}, models.SourceConsumer)
		So(err, ShouldBeNil)
		So(outcome.Status, ShouldEqual, "pending")
		So(outcome.Exhausted, ShouldBeTrue)
	})

	Convey("Unresolved states are rejected", t, func() {
		_, err := transformerUnderTest.GetOutcomeResource("cs_1", poller.State{Phase: poller.PhasePending, Attempt: 1}, models.SourceConsumer)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldEqual, "cannot record unresolved payment state: pending")
	})
}
