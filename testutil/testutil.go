package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

const CompletedStatusResponse = `{
    "status": "completed",
    "transaction": {
        "id": 42,
        "email": "buyer@example.com",
        "stripe_id": "cs_test_a1b2c3",
        "transaction_id": "pi_3N8xYz",
        "status": "completed",
        "amount_cents": 100,
        "product_name": "Dark Chocolate",
        "session_id": "cs_test_a1b2c3",
        "created_at": "2025-01-14T10:12:30.000Z",
        "updated_at": "2025-01-14T10:12:41.000Z"
    }
}`

const PendingStatusResponse = `{"status": "pending"}`

const FailedStatusResponse = `{"status": "failed", "transaction": {"status": "failed"}}`

func CreateMockClient(hasResponseBody bool, status int, responseBody string) *http.Client {

	mockStreamServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(status)
		if hasResponseBody {
			w.Write([]byte(responseBody))
		}
	}))

	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			return url.Parse(mockStreamServer.URL)
		},
	}

	httpClient := &http.Client{Transport: transport}

	return httpClient
}

// StatusReply is one scripted reply from a StatusServer
type StatusReply struct {
	Code int
	Body string
}

// StatusServer is a scripted status endpoint that records each request it serves
type StatusServer struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []StatusReply
	requests []*http.Request
	OnQuery  func(n int)
}

// NewStatusServer starts a status endpoint returning the replies in order. Once
// the script runs out the last reply is repeated.
func NewStatusServer(replies ...StatusReply) *StatusServer {
	s := &StatusServer{replies: replies}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *StatusServer) serve(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	n := len(s.requests)
	s.requests = append(s.requests, req)
	reply := StatusReply{Code: http.StatusInternalServerError}
	if len(s.replies) > 0 {
		i := n
		if i >= len(s.replies) {
			i = len(s.replies) - 1
		}
		reply = s.replies[i]
	}
	onQuery := s.OnQuery
	s.mu.Unlock()

	if onQuery != nil {
		onQuery(n + 1)
	}

	w.WriteHeader(reply.Code)
	w.Write([]byte(reply.Body))
}

// Count returns the number of requests served
func (s *StatusServer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Request returns the i'th request served
func (s *StatusServer) Request(i int) *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}
