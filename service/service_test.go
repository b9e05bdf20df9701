package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/companieshouse/chs.go/avro"
	"github.com/companieshouse/chs.go/kafka/consumer/cluster"
	"github.com/companieshouse/chs.go/kafka/producer"
	"github.com/companieshouse/payment-status-poller/credentials"
	"github.com/companieshouse/payment-status-poller/dao"
	"github.com/companieshouse/payment-status-poller/data"
	"github.com/companieshouse/payment-status-poller/models"
	"github.com/companieshouse/payment-status-poller/poller"
	"github.com/companieshouse/payment-status-poller/status"
	"github.com/companieshouse/payment-status-poller/transformer"
	"github.com/golang/mock/gomock"
	. "github.com/smartystreets/goconvey/convey"
)

const sessionID = "cs_test_a1b2c3"
const buyerEmail = "buyer@example.com"
const apiToken = "api-token"

// handled records the errors passed to a mock service's HandleError
type handled struct {
	mu   sync.Mutex
	errs []error
}

func (h *handled) add(err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func (h *handled) all() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

// fixedResolver replays the same states for every session and remembers what it was asked for
type fixedResolver struct {
	states []poller.State

	mu       sync.Mutex
	sessions []string
	tokens   []string
}

func (f *fixedResolver) Resolve(ctx context.Context, sessionID string, creds credentials.Source) <-chan poller.State {
	f.mu.Lock()
	f.sessions = append(f.sessions, sessionID)
	f.tokens = append(f.tokens, creds.Token())
	f.mu.Unlock()

	out := make(chan poller.State)
	go func() {
		defer close(out)
		for _, s := range f.states {
			out <- s
		}
	}()
	return out
}

func createMockService(resolver poller.Resolver, mockDao *dao.MockDAO, h *handled, onHandleError func()) *Service {

	return &Service{
		Producer:     createMockProducer(),
		PssSchema:    getDefaultSchema(),
		Credentials:  credentials.Static(apiToken),
		Resolver:     resolver,
		Transformer:  transformer.New(),
		DAO:          mockDao,
		StopAtOffset: int64(-1),
		Topic:        "test",
		HandleError: func(err error, offset int64, str interface{}) error {
			h.add(err)
			if onHandleError != nil {
				onHandleError()
			}
			return err
		},
	}
}

func createMockConsumerWithMessage(sessionID string) *consumer.GroupConsumer {

	return &consumer.GroupConsumer{
		GConsumer: MockConsumer{SessionID: sessionID, Email: buyerEmail},
		Group:     MockGroup{},
	}
}

func createMockProducer() *producer.Producer {

	return &producer.Producer{
		SyncProducer: MockProducer{},
	}
}

func getDefaultSchema() string {

	return "{\"type\":\"record\",\"name\":\"payment_session_started\",\"namespace\":\"payments\",\"fields\":[{\"name\":\"session_id\",\"type\":\"string\"}, {\"name\":\"email\",\"type\":\"string\"}]}"
}

var MockSchema = &avro.Schema{
	Definition: getDefaultSchema(),
}

type MockProducer struct {
	sarama.SyncProducer
}

func (m MockProducer) Close() error {
	return nil
}

type MockConsumer struct {
	SessionID string
	Email     string
	Corrupt   bool
}

func (m MockConsumer) prepareTestKafkaMessage() ([]byte, error) {
	if m.Corrupt {
		return []byte{0xff, 0xff, 0xff}, nil
	}
	return MockSchema.Marshal(data.PaymentSessionStarted{SessionID: m.SessionID, Email: m.Email})
}

func (m MockConsumer) Close() error {
	return nil
}

func (m MockConsumer) Messages() <-chan *sarama.ConsumerMessage {
	out := make(chan *sarama.ConsumerMessage)

	bytes, _ := m.prepareTestKafkaMessage()
	go func() {
		out <- &sarama.ConsumerMessage{
			Value: bytes,
		}
		close(out)
	}()

	return out
}

func (m MockConsumer) Errors() <-chan error {
	return nil
}

type MockGroup struct{}

func (m MockGroup) MarkOffset(msg *sarama.ConsumerMessage, metadata string) {

}

func (m MockGroup) CommitOffsets() error {
	return nil
}

// endConsumerProcess facilitates service termination
func endConsumerProcess(svc *Service, c chan os.Signal) {

	// Decrement the offset to escape an endless loop in the service
	svc.StopAtOffset = int64(-2)

	// Send a kill command to the input channel to terminate program execution
	go func() {
		c <- os.Kill
		close(c)
	}()
}

func TestUnitStart(t *testing.T) {

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	Convey("A completed payment is recorded and not retried", t, func() {
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c := make(chan os.Signal)
		h := &handled{}

		resolver := &fixedResolver{states: []poller.State{
			{Phase: poller.PhaseLoading},
			{Phase: poller.PhaseCompleted, Attempt: 1},
		}}
		mockDao := dao.NewMockDAO(ctrl)
		svc := createMockService(resolver, mockDao, h, nil)
		svc.Consumer = createMockConsumerWithMessage(sessionID)

		var recorded models.PaymentOutcomeDao
		mockDao.EXPECT().CreatePaymentOutcomeResource(gomock.Any()).DoAndReturn(func(o *models.PaymentOutcomeDao) error {
			recorded = *o

			// Since this is the last thing the service does, we send a signal to kill the consumer process gracefully
			endConsumerProcess(svc, c)
			return nil
		}).Times(1)

		svc.Start(wg, c)

		So(recorded.SessionID, ShouldEqual, sessionID)
		So(recorded.Status, ShouldEqual, "completed")
		So(recorded.Email, ShouldEqual, buyerEmail)
		So(recorded.Source, ShouldEqual, models.SourceConsumer)
		So(h.all(), ShouldBeEmpty)
		So(resolver.sessions, ShouldResemble, []string{sessionID})
		So(resolver.tokens, ShouldResemble, []string{apiToken})
	})

	Convey("An exhausted payment is recorded and handed to the retry handler", t, func() {
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c := make(chan os.Signal)
		h := &handled{}

		resolver := &fixedResolver{states: []poller.State{
			{Phase: poller.PhaseLoading},
			{Phase: poller.PhasePending, Attempt: 1},
			{Phase: poller.PhaseExhausted, Attempt: 4},
		}}
		mockDao := dao.NewMockDAO(ctrl)
		var svc *Service
		svc = createMockService(resolver, mockDao, h, func() { endConsumerProcess(svc, c) })
		svc.Consumer = createMockConsumerWithMessage(sessionID)

		var recorded models.PaymentOutcomeDao
		mockDao.EXPECT().CreatePaymentOutcomeResource(gomock.Any()).DoAndReturn(func(o *models.PaymentOutcomeDao) error {
			recorded = *o
			return nil
		}).Times(1)

		svc.Start(wg, c)

		So(recorded.Status, ShouldEqual, "pending")
		So(recorded.Exhausted, ShouldBeTrue)
		So(recorded.Attempts, ShouldEqual, 4)
		So(h.all(), ShouldResemble, []error{ErrStillPending})
	})

	Convey("A status query failure is recorded as failed and handed to the retry handler", t, func() {
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c := make(chan os.Signal)
		h := &handled{}

		cause := &status.StatusQueryError{Status: 503}
		resolver := &fixedResolver{states: []poller.State{
			{Phase: poller.PhaseLoading},
			{Phase: poller.PhaseFailed, Attempt: 1, Err: cause},
		}}
		mockDao := dao.NewMockDAO(ctrl)
		var svc *Service
		svc = createMockService(resolver, mockDao, h, func() { endConsumerProcess(svc, c) })
		svc.Consumer = createMockConsumerWithMessage(sessionID)

		mockDao.EXPECT().CreatePaymentOutcomeResource(gomock.Any()).Return(nil).Times(1)

		svc.Start(wg, c)

		errs := h.all()
		So(len(errs), ShouldEqual, 1)

		var sqe *status.StatusQueryError
		So(errors.As(errs[0], &sqe), ShouldBeTrue)
		So(sqe.Status, ShouldEqual, 503)
	})

	Convey("A database failure is handed to the retry handler", t, func() {
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c := make(chan os.Signal)
		h := &handled{}

		resolver := &fixedResolver{states: []poller.State{
			{Phase: poller.PhaseLoading},
			{Phase: poller.PhaseFailed, Attempt: 2},
		}}
		mockDao := dao.NewMockDAO(ctrl)
		var svc *Service
		svc = createMockService(resolver, mockDao, h, func() { endConsumerProcess(svc, c) })
		svc.Consumer = createMockConsumerWithMessage(sessionID)

		dbErr := errors.New("insert failed")
		mockDao.EXPECT().CreatePaymentOutcomeResource(gomock.Any()).Return(dbErr).Times(1)

		svc.Start(wg, c)

		So(h.all(), ShouldResemble, []error{dbErr})
	})

	Convey("An unreadable message is handed to the retry handler without resolving", t, func() {
		wg := &sync.WaitGroup{}
		wg.Add(1)
		c := make(chan os.Signal)
		h := &handled{}

		resolver := &fixedResolver{}
		mockDao := dao.NewMockDAO(ctrl)
		var svc *Service
		svc = createMockService(resolver, mockDao, h, func() { endConsumerProcess(svc, c) })
		svc.Consumer = &consumer.GroupConsumer{
			GConsumer: MockConsumer{Corrupt: true},
			Group:     MockGroup{},
		}

		mockDao.EXPECT().CreatePaymentOutcomeResource(gomock.Any()).Times(0)

		svc.Start(wg, c)

		So(len(h.all()), ShouldEqual, 1)
		So(resolver.sessions, ShouldBeEmpty)
	})
}
