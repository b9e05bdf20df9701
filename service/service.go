package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"github.com/companieshouse/chs.go/avro"
	"github.com/companieshouse/chs.go/avro/schema"
	"github.com/companieshouse/chs.go/kafka/client"
	"github.com/companieshouse/chs.go/kafka/consumer/cluster"
	"github.com/companieshouse/chs.go/kafka/producer"
	"github.com/companieshouse/chs.go/kafka/resilience"
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

// ErrStillPending is handed to the retry handler when a session is still
// pending after the attempt budget so that it is checked again later.
var ErrStillPending = errors.New("payment still pending after maximum status attempts")

const schemaName = "payment-session-started"

// Service represents service config for payment-status-poller
type Service struct {
	Consumer        *consumer.GroupConsumer
	Producer        *producer.Producer
	PssSchema       string
	InitialOffset   int64
	HandleError     func(err error, offset int64, str interface{}) error
	Topic           string
	Retry           *resilience.ServiceRetry
	IsErrorConsumer bool
	BrokerAddr      []string
	Credentials     credentials.Source
	DAO             dao.DAO
	Resolver        poller.Resolver
	Transformer     transformer.Transformer
	StopAtOffset    int64
}

// New creates a new instance of service with a given consumerGroup name,
// consumerTopic, throttleRate and payment-status-poller config
func New(consumerTopic, consumerGroupName string, cfg *config.Config, retry *resilience.ServiceRetry) (*Service, error) {

	pssSchema, err := schema.Get(cfg.SchemaRegistryURL, schemaName)
	if err != nil {
		log.Error(fmt.Errorf("error receiving %s schema: %s", schemaName, err))
		return nil, err
	}
	log.Info("Successfully received schema", log.Data{keys.SchemaName: schemaName})

	appName := cfg.Namespace()

	p, err := producer.New(&producer.Config{Acks: &producer.WaitForAll, BrokerAddrs: cfg.BrokerAddr})
	if err != nil {
		log.Error(fmt.Errorf("error initialising producer: %s", err), nil)
		return nil, err
	}

	maxRetries := 0
	if retry != nil {
		maxRetries = retry.MaxRetries
	}

	log.Info("Start Request Create resilient Kafka service", log.Data{keys.BaseTopic: consumerTopic, keys.AppName: appName, keys.MaxRetries: maxRetries, keys.Producer: p})
	rh := resilience.NewHandler(consumerTopic, "consumer", retry, p, &avro.Schema{Definition: pssSchema})

	// Work out what topic we're consuming from, depending on whether were processing resilience or error input
	topicName := consumerTopic
	if retry != nil {
		topicName = rh.GetRetryTopicName()
	}
	if cfg.IsErrorConsumer {
		topicName = rh.GetErrorTopicName()
	}

	var resetOffset bool

	consumerConfig := &consumer.Config{
		Topics:       []string{topicName},
		ZookeeperURL: cfg.ZookeeperURL,
		BrokerAddr:   cfg.BrokerAddr,
	}

	log.Info("attempting to join consumer group", log.Data{
		"consumer_group_name": consumerGroupName,
		keys.Topic:            topicName,
	})

	groupConfig := &consumer.GroupConfig{
		GroupName:   consumerGroupName,
		ResetOffset: resetOffset,
		Chroot:      cfg.ZookeeperChroot,
	}

	c := consumer.NewConsumerGroup(consumerConfig)
	if err = c.JoinGroup(groupConfig); err != nil {
		log.Error(fmt.Errorf("error joining '%s' consumer group: %s", consumerGroupName, err), nil)
		return nil, err
	}

	// If we're an error consumer, then capture the tail of the topic, and only consume up to that offset.
	stopAtOffset := int64(-1)
	if cfg.IsErrorConsumer {
		stopAtOffset, err = client.TopicOffset(cfg.BrokerAddr, topicName)
		if err != nil {
			log.Error(err, log.Data{keys.Topic: topicName})
		}
		log.Info("error queue consumer will stop when backlog offset reached", log.Data{keys.BacklogOffset: stopAtOffset})
	}

	return &Service{
		Consumer:        c,
		Producer:        p,
		PssSchema:       pssSchema,
		HandleError:     rh.HandleError,
		Topic:           topicName,
		Retry:           retry,
		IsErrorConsumer: cfg.IsErrorConsumer,
		BrokerAddr:      cfg.BrokerAddr,
		Credentials:     credentials.Static(cfg.StatusAPIToken),
		DAO:             dao.New(cfg),
		Resolver:        poller.New(cfg),
		Transformer:     transformer.New(),
		StopAtOffset:    stopAtOffset,
	}, nil

}

// Start begins the service - Messages are consumed from the payment-session-started
// topic
func (svc *Service) Start(wg *sync.WaitGroup, c chan os.Signal) {
	log.Info("service starting, consuming from the " + svc.Topic + " topic")

	var message *sarama.ConsumerMessage

	// We want to stop the processing of the service if consuming from an
	// error queue if all messages that were initially in the queue have
	// been cleared using the stopAtOffset
	running := true
	for running && (svc.StopAtOffset == -1 || message == nil || message.Offset < svc.StopAtOffset) {

		if message != nil {
			// Commit the message we've just been processing before starting the next
			log.Trace("Committing message", log.Data{keys.Offset: message.Offset})
			svc.Consumer.MarkOffset(message, "")
			if err := svc.Consumer.CommitOffsets(); err != nil {
				log.Error(err, log.Data{keys.Offset: message.Offset})
			}
		}

		if svc.Retry != nil && svc.Retry.ThrottleRate > 0 {
			time.Sleep(svc.Retry.ThrottleRate * time.Second)
		}

		select {
		case <-c:
			running = false

		case message = <-svc.Consumer.Messages():
			// Falls into this block when a message becomes available from consumer

			if message != nil && message.Offset >= svc.InitialOffset {
				svc.process(message)
			}

		case err := <-svc.Consumer.Errors():
			log.Error(err, log.Data{keys.Topic: svc.Topic})
		}
	}

	// We only get here if we're an error consumer and we've reached out stop offset
	// We will not consume any further messages, so disconnect consumer.
	svc.Shutdown(svc.Topic)

	// The app must not exit until explicitly asked to. If it did, when in
	// a managed environment such as Mesos/Marathon, the app will get
	// restarted and will go on to consume further messages in the error
	// topic and chasing it's own tail, if something is really broken.
	if running {
		<-c // Just wait for a shutdown event
		log.Info("Received close notification")
	}

	wg.Done()

	log.Info("Service successfully shutdown", log.Data{keys.Topic: svc.Topic})
}

// process resolves the payment status of the session named in message and
// records the outcome
func (svc *Service) process(message *sarama.ConsumerMessage) {
	log.Info("Received payment session started message. Resolving payment status...", log.Data{keys.Offset: message.Offset})

	var pss data.PaymentSessionStarted
	pssSchema := &avro.Schema{
		Definition: svc.PssSchema,
	}

	if err := pssSchema.Unmarshal(message.Value, &pss); err != nil {
		log.Error(err, log.Data{keys.Offset: message.Offset})
		svc.HandleError(err, message.Offset, &message.Value)
		return
	}

	final, ok := poller.Last(svc.Resolver.Resolve(context.Background(), pss.SessionID, svc.Credentials))
	if !ok {
		log.Info("Payment status sequence ended without resolving", log.Data{keys.SessionID: pss.SessionID, keys.Offset: message.Offset})
		return
	}

	logData := log.Data{keys.SessionID: pss.SessionID, keys.Status: final.Status(), keys.Attempt: final.Attempt, keys.Exhausted: final.Exhausted()}
	log.Info("Payment status resolved", logData)

	outcome, err := svc.Transformer.GetOutcomeResource(pss.SessionID, final, models.SourceConsumer)
	if err != nil {
		log.Error(err, log.Data{keys.Offset: message.Offset})
		svc.HandleError(err, message.Offset, &pss)
		return
	}
	outcome.Email = pss.Email

	if err := svc.DAO.CreatePaymentOutcomeResource(&outcome); err != nil {
		log.Error(err, log.Data{keys.Message: "failed to record payment outcome in database", "data": outcome})
		svc.HandleError(err, message.Offset, &pss)
		return
	}

	switch {
	case final.Exhausted():
		svc.HandleError(ErrStillPending, message.Offset, &pss)
	case final.Err != nil:
		svc.HandleError(final.Err, message.Offset, &pss)
	}
}

// Shutdown closes all producers and consumers for this service
func (svc *Service) Shutdown(topic string) {

	log.Info("Shutting down service ", log.Data{keys.Topic: topic})

	log.Info("Closing producer", log.Data{keys.Topic: topic})
	err := svc.Producer.Close()
	if err != nil {
		log.Error(fmt.Errorf("error closing producer: %s", err))
	}
	log.Info("Producer successfully closed", log.Data{keys.Topic: svc.Topic})

	log.Info("Closing consumer", log.Data{keys.Topic: topic})
	err = svc.Consumer.Close()
	if err != nil {
		log.Error(fmt.Errorf("error closing consumer: %s", err))
	}
	log.Info("Consumer successfully closed", log.Data{keys.Topic: svc.Topic})
}
