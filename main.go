package main

import (
	"fmt"
	gologger "log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Shopify/sarama"
	"github.com/companieshouse/chs.go/kafka/resilience"
	"github.com/companieshouse/chs.go/log"
	"github.com/companieshouse/payment-status-poller/config"
	"github.com/companieshouse/payment-status-poller/credentials"
	"github.com/companieshouse/payment-status-poller/dao"
	"github.com/companieshouse/payment-status-poller/handlers"
	"github.com/companieshouse/payment-status-poller/poller"
	"github.com/companieshouse/payment-status-poller/service"
	"github.com/companieshouse/payment-status-poller/session"
	"github.com/gorilla/pat"
)

func main() {
	log.Namespace = "payment-status-poller"

	// Push the Sarama logs into our custom writer
	sarama.Logger = gologger.New(&log.Writer{}, "[Sarama] ", gologger.LstdFlags)

	cfg, err := config.Get()
	if err != nil {
		log.Error(fmt.Errorf("error configuring service: %s. Exiting", err), nil)
		return
	}

	messages, err := config.GetStatusMessages()
	if err != nil {
		log.Error(fmt.Errorf("error loading status messages: %s. Exiting", err), nil)
		return
	}

	log.Info("intialising payment-status-poller service...")

	var outcomes dao.DAO
	if cfg.MongoDBURL != "" {
		outcomes = dao.New(cfg)
		defer outcomes.Shutdown()
	} else {
		log.Info("no MongoDB URL configured, payment outcomes will not be recorded")
	}

	tokens := credentials.NewStore()
	tracker := session.NewTracker(poller.New(cfg), tokens, messages, outcomes)

	router := pat.New()
	handlers.Init(router, tracker, tokens)
	go func() {
		log.Info("Starting HTTP server on " + cfg.BindAddr)
		if err := http.ListenAndServe(cfg.BindAddr, router); err != nil {
			log.Error(fmt.Errorf("error starting HTTP server: %s", err), nil)
		}
	}()

	mainChannel := make(chan os.Signal, 1)
	retryChannel := make(chan os.Signal, 1)

	var wg sync.WaitGroup
	if cfg.ConsumerEnabled {
		svc, err := service.New(cfg.PaymentSessionStartedTopic, cfg.PaymentStatusGroupName, cfg, nil)
		if err != nil {
			log.Error(fmt.Errorf("error initialising main consumer service: '%s'. Exiting", err), nil)
			return
		}

		if !cfg.IsErrorConsumer {
			retrySvc, err := getRetryService(cfg)
			if err != nil {
				log.Error(fmt.Errorf("error initialising retry consumer service: '%s'. Exiting", err), nil)
				svc.Shutdown(cfg.PaymentSessionStartedTopic)
				return
			}
			wg.Add(1)
			go retrySvc.Start(&wg, retryChannel)
		}

		wg.Add(1)
		go svc.Start(&wg, mainChannel)
	}

	waitForServiceClose(&wg, tracker, mainChannel, retryChannel)

	log.Info("Application successfully shutdown")

}

func getRetryService(cfg *config.Config) (*service.Service, error) {

	retry := &resilience.ServiceRetry{
		ThrottleRate: time.Duration(cfg.RetryThrottleRate),
		MaxRetries:   cfg.MaxRetryAttempts,
	}

	retrySvc, err := service.New(cfg.PaymentSessionStartedTopic, cfg.PaymentStatusGroupName, cfg, retry)
	if err != nil {
		log.Error(fmt.Errorf("error initialising retry consumer service: %s", err), nil)
		return nil, err
	}

	return retrySvc, nil
}

// waitForServiceClose will receive the close signal, abandon any status
// sequence the storefront is following and forward a notification to the
// consumers so that they close their producers and consumers and exit
// gracefully.
func waitForServiceClose(wg *sync.WaitGroup, tracker *session.Tracker, mainChannel, retryChannel chan os.Signal) {

	// Channel to fan-out interrupt/kill notifications
	notificationChannel := make(chan os.Signal, 1)
	signal.Notify(notificationChannel, os.Interrupt, os.Kill, syscall.SIGTERM)

	notification := <-notificationChannel
	log.Info("Close signal received, fanning out...")

	tracker.Continue()

	log.Debug("Sending notification to main consumer channel")
	mainChannel <- notification

	log.Debug("Sending notification to retry consumer channel")
	retryChannel <- notification

	log.Info("Fan out completed")

	wg.Wait()
}
