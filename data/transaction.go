package data

import (
	"encoding/json"
	"time"
)

const transactionIDKey = "transaction_id"

// Older crypto transaction records carry a misspelt identifier key. It is read
// but never written.
const legacyTransactionIDKey = "transacction_id"

// Transaction represents a card payment record
type Transaction struct {
	ID            int64         `json:"id"`
	Email         string        `json:"email"`
	StripeID      string        `json:"stripe_id"`
	TransactionID *string       `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`
	AmountCents   *int64        `json:"amount_cents"`
	ProductName   *string       `json:"product_name"`
	SessionID     *string       `json:"session_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CryptoTransaction represents a crypto payment record
type CryptoTransaction struct {
	ID                  int64         `json:"id"`
	Email               string        `json:"email"`
	Status              PaymentStatus `json:"status"`
	AmountCents         *int64        `json:"amount_cents"`
	ProductName         *string       `json:"product_name"`
	TransactionID       string        `json:"transaction_id"`
	NearTransactionHash *string       `json:"near_transaction_hash"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// UnmarshalJSON decodes a crypto transaction, accepting the legacy
// transacction_id key when transaction_id is absent.
func (c *CryptoTransaction) UnmarshalJSON(b []byte) error {
	type Alias CryptoTransaction
	aux := struct {
		*Alias
		LegacyTransactionID string `json:"transacction_id"`
	}{Alias: (*Alias)(c)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if c.TransactionID == "" {
		c.TransactionID = aux.LegacyTransactionID
	}
	return nil
}
