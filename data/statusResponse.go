package data

import "encoding/json"

// StatusResponse represents a response from the shop GET status endpoint
type StatusResponse struct {
	Status      string              `json:"status"`
	Transaction *TransactionSummary `json:"transaction,omitempty"`
}

// TransactionSummary is the transaction attached to a status response. Only the
// status is guaranteed; any other fields are kept in Extra.
type TransactionSummary struct {
	Status        string                 `json:"status"`
	TransactionID string                 `json:"transaction_id,omitempty"`
	Extra         map[string]interface{} `json:"-"`
}

// UnmarshalJSON decodes the summary, accepting the legacy transacction_id key.
func (t *TransactionSummary) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	t.Extra = map[string]interface{}{}
	for k, v := range raw {
		switch k {
		case "status":
			t.Status, _ = v.(string)
		case transactionIDKey:
			if id, ok := v.(string); ok {
				t.TransactionID = id
			}
		case legacyTransactionIDKey:
			if id, ok := v.(string); ok && t.TransactionID == "" {
				t.TransactionID = id
			}
		default:
			t.Extra[k] = v
		}
	}
	return nil
}
