package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sources of a resolved outcome
const (
	SourceStorefront = "storefront"
	SourceConsumer   = "consumer"
)

// PaymentOutcomeDao represents the resolved status of a checkout session
type PaymentOutcomeDao struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	SessionID  string             `bson:"session_id"`
	Status     string             `bson:"status"`
	Attempts   int                `bson:"attempts"`
	Exhausted  bool               `bson:"exhausted"`
	Source     string             `bson:"source"`
	Email      string             `bson:"email,omitempty"`
	ResolvedAt time.Time          `bson:"resolved_at"`
}
