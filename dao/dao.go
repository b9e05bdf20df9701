package dao

import (
	"github.com/companieshouse/payment-status-poller/config"
	"github.com/companieshouse/payment-status-poller/models"
)

// DAO provides access to the database
type DAO interface {
	// CreatePaymentOutcomeResource will persist a resolved payment outcome
	CreatePaymentOutcomeResource(dao *models.PaymentOutcomeDao) error
	// Shutdown can be called to clean up any open resources that the service may be holding on to.
	Shutdown()
}

// New will create a new instance of the DAO interface. All details about its implementation and the
// database driver will be hidden from outside of this package
func New(cfg *config.Config) DAO {
	database := getMongoDatabase(cfg.MongoDBURL, cfg.Database)
	return &MongoService{
		db:                 database,
		OutcomesCollection: cfg.OutcomesCollection,
	}
}
