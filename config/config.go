package config

import (
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/ian-kent/gofigure"
	"gopkg.in/yaml.v2"
)

// Config is the payment status poller config
type Config struct {
	gofigure                   interface{} `order:"env,flag"`
	BindAddr                   string      `env:"BIND_ADDR"                       flag:"bind-addr"                       flagDesc:"Bind address for the storefront HTTP surface"`
	StatusAPIURL               string      `env:"STATUS_API_URL"                  flag:"status-api-url"                  flagDesc:"Base URL for the shop payment status API"`
	StatusAPIToken             string      `env:"STATUS_API_TOKEN"                flag:"status-api-token"                flagDesc:"Bearer token used by the reconciliation consumer"`
	PollMaxAttempts            int         `env:"POLL_MAX_ATTEMPTS"               flag:"poll-max-attempts"               flagDesc:"Maximum status queries per session"`
	PollIntervalMillis         int         `env:"POLL_INTERVAL_MS"                flag:"poll-interval-ms"                flagDesc:"Delay between status queries while pending, in milliseconds"`
	ConsumerEnabled            bool        `env:"CONSUMER_ENABLED"                flag:"consumer-enabled"                flagDesc:"Run the payment session reconciliation consumer"`
	BrokerAddr                 []string    `env:"KAFKA_BROKER_ADDR"               flag:"broker-addr"                     flagDesc:"Kafka broker cluster address"`
	PaymentStatusGroupName     string      `env:"PAYMENT_STATUS_GROUP_NAME"       flag:"payment-status-group-name"       flagDesc:"Payment status consumer group name"`
	PaymentSessionStartedTopic string      `env:"PAYMENT_SESSION_STARTED_TOPIC"   flag:"payment-session-started-topic"   flagDesc:"Payment session started topic"`
	ZookeeperChroot            string      `env:"KAFKA_ZOOKEEPER_CHROOT"          flag:"zookeeper-chroot"                flagDesc:"Zookeeper chroot"`
	ZookeeperURL               string      `env:"KAFKA_ZOOKEEPER_ADDR"            flag:"zookeeper-addr"                  flagDesc:"Zookeeper address"`
	RetryThrottleRate          int         `env:"RETRY_THROTTLE_RATE_SECONDS"     flag:"retry-throttle-rate-seconds"     flagDesc:"Retry throttle rate seconds"`
	MaxRetryAttempts           int         `env:"MAXIMUM_RETRY_ATTEMPTS"          flag:"max-retry-attemps"               flagDesc:"Maximum retry attempts"`
	IsErrorConsumer            bool        `env:"IS_ERROR_QUEUE_CONSUMER"         flag:"is-error-queue-consumer"         flagDesc:"Set this flag if it is an error queue consumer"`
	SchemaRegistryURL          string      `env:"SCHEMA_REGISTRY_URL"             flag:"schema-registry-url"             flagDesc:"Schema registry url"`
	MongoDBURL                 string      `env:"MONGODB_URL"                     flag:"mongodb-url"                     flagDesc:"MongoDB server URL"`
	Database                   string      `env:"POLLER_MONGODB_DATABASE"         flag:"mongodb-database"                flagDesc:"MongoDB database for data"`
	OutcomesCollection         string      `env:"PAYMENT_OUTCOMES_COLLECTION"     flag:"mongodb-payment-outcomes-collection" flagDesc:"MongoDB collection for resolved payment outcomes"`
}

// Namespace implements service.Config.Namespace
func (c *Config) Namespace() string {
	return "payment-status-poller"
}

// PollInterval is the configured delay between status queries
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// StatusMessage is the user facing copy for a single view
type StatusMessage struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
	Icon    string `yaml:"icon"`
}

// StatusMessages contains the presentation copy keyed by view name
type StatusMessages struct {
	Views map[string]StatusMessage `yaml:"views"`
}

var statusMessages *StatusMessages

// GetStatusMessages fetches the presentation copy for each payment status view
func GetStatusMessages() (*StatusMessages, error) {

	if statusMessages != nil {
		return statusMessages, nil
	}

	filename, err := filepath.Abs("assets/status_messages.yml")
	if err != nil {
		return nil, err
	}

	yamlFile, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlFile, &statusMessages)
	if err != nil {
		return nil, err
	}

	return statusMessages, nil
}

var cfg *Config

// Get configures the application and returns the configuration
func Get() (*Config, error) {

	if cfg != nil {
		return cfg, nil
	}

	cfg = &Config{
		BindAddr:                   ":8080",
		PollMaxAttempts:            4,
		PollIntervalMillis:         3000,
		PaymentStatusGroupName:     "payment-status-poller-group",
		PaymentSessionStartedTopic: "payment-session-started",
		ZookeeperChroot:            "",
		RetryThrottleRate:          10,
		MaxRetryAttempts:           6,
		OutcomesCollection:         "payment_outcomes",
	}

	err := gofigure.Gofigure(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
