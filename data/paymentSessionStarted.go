package data

// PaymentSessionStarted represents payment session started avro schema
type PaymentSessionStarted struct {
	SessionID string `avro:"session_id"`
	Email     string `avro:"email"`
}
