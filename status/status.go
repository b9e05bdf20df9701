package status

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/companieshouse/chs.go/log"
	"github.com/companieshouse/payment-status-poller/data"
	"github.com/companieshouse/payment-status-poller/keys"
	"github.com/google/uuid"
)

// StatusQueryError is returned when a non-success status is returned from the status api
type StatusQueryError struct {
	Status int
}

// Error provides a consistent error when receiving an invalid response status when fetching a payment status
func (e *StatusQueryError) Error() string {
	return fmt.Sprintf("invalid status returned from status api: [%d]", e.Status)
}

// MalformedResponseError is returned when the status api body cannot be understood
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from status api: %s", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Fetcher provides an interface by which to fetch payment statuses
type Fetcher interface {
	GetStatus(ctx context.Context, statusAPIURL string, HTTPClient *http.Client, token string) (data.StatusResponse, int, error)
}

// Fetch implements the the Fetcher interface
type Fetch struct{}

// New returns a new implementation of the Fetcher interface
func New() *Fetch {

	return &Fetch{}
}

// StatusURL builds the status endpoint URL for a session
func StatusURL(statusAPIURL, sessionID string) string {
	return strings.TrimSuffix(statusAPIURL, "/") + "/status/" + url.PathEscape(sessionID)
}

// GetStatus executes a GET request to the status URL. A non-empty token is sent
// as a bearer credential.
func (impl *Fetch) GetStatus(ctx context.Context, statusAPIURL string, HTTPClient *http.Client, token string) (data.StatusResponse, int, error) {
	var s data.StatusResponse

	req, err := http.NewRequestWithContext(ctx, "GET", statusAPIURL, nil)
	if err != nil {
		return s, 0, err
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	log.Trace("GET request to the status api to get the payment status", log.Data{keys.Request: statusAPIURL, keys.RequestID: requestID})

	res, err := HTTPClient.Do(req)
	if err != nil {
		return s, 500, err
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return s, res.StatusCode, &StatusQueryError{res.StatusCode}
	}

	body, err := ioutil.ReadAll(res.Body)
	log.Info("Status response body", log.Data{keys.StatusResponse: string(body), keys.RequestID: requestID})
	if err != nil {
		return s, res.StatusCode, err
	}

	if err := json.Unmarshal(body, &s); err != nil {
		return s, res.StatusCode, &MalformedResponseError{err}
	}

	if _, err := data.ParseStatus(s.Status); err != nil {
		return s, res.StatusCode, &MalformedResponseError{err}
	}

	return s, res.StatusCode, nil
}
