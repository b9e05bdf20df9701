package data

import "fmt"

// PaymentStatus is the state of a checkout session's payment
type PaymentStatus string

const (
	// StatusLoading is the client-only state before the first response
	StatusLoading PaymentStatus = "loading"
	StatusPending PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed PaymentStatus = "failed"
)

// InvalidStatusError is returned when a status value is not one the status API may return
type InvalidStatusError struct {
	value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid payment status: [%s]", e.value)
}

// ParseStatus converts a status API value into a PaymentStatus. Only pending,
// completed and failed are accepted.
func ParseStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case StatusPending, StatusCompleted, StatusFailed:
		return PaymentStatus(s), nil
	}
	return "", &InvalidStatusError{s}
}

// IsTerminal indicates whether no further polling should follow this status.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s PaymentStatus) String() string {
	return string(s)
}
