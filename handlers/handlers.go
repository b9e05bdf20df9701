package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/companieshouse/chs.go/log"
	"github.com/companieshouse/payment-status-poller/credentials"
	"github.com/companieshouse/payment-status-poller/keys"
	"github.com/companieshouse/payment-status-poller/session"
	"github.com/gorilla/pat"
)

const basePath = "/payment-status-poller"

// sessionIDParam is the query parameter the checkout provider appends to the return URL
const sessionIDParam = "session_id"

// Init registers the storefront endpoints beneath basePath
func Init(r *pat.Router, tracker *session.Tracker, tokens *credentials.Store) {
	log.Info("initialising storefront endpoints beneath basePath: " + basePath)

	appRouter := r.PathPrefix(basePath).Subrouter()

	appRouter.Path("/healthcheck").Methods("GET").HandlerFunc(HealthCheck)
	appRouter.Path("/return").Methods("GET").HandlerFunc(Return(tracker, tokens))
	appRouter.Path("/status").Methods("GET").HandlerFunc(Status(tracker))
	appRouter.Path("/continue").Methods("POST").HandlerFunc(Continue(tracker))
	appRouter.Path("/credentials").Methods("PUT").HandlerFunc(RefreshCredentials(tokens))
}

// HealthCheck reports that the service is up
func HealthCheck(w http.ResponseWriter, req *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Return handles the buyer coming back from checkout. The bearer token on the
// request becomes the credential for the status queries that follow.
func Return(tracker *session.Tracker, tokens *credentials.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sessionID := req.URL.Query().Get(sessionIDParam)
		if sessionID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody("missing session_id"))
			return
		}

		if token, ok := credentials.BearerToken(req); ok {
			tokens.Set(token)
		}

		if err := tracker.Start(sessionID); err != nil {
			log.Error(err, log.Data{keys.SessionID: sessionID})
			writeJSON(w, http.StatusBadRequest, errorBody("invalid session_id"))
			return
		}

		writeJSON(w, http.StatusOK, tracker.View())
	}
}

// Status returns the current view
func Status(tracker *session.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, tracker.View())
	}
}

// Continue abandons the tracked session and returns the buyer to the products view
func Continue(tracker *session.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		tracker.Continue()
		writeJSON(w, http.StatusOK, tracker.View())
	}
}

// RefreshCredentials replaces the stored bearer token. Sequences in progress
// pick it up on their next attempt.
func RefreshCredentials(tokens *credentials.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token, ok := credentials.BearerToken(req)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody("missing bearer token"))
			return
		}
		tokens.Set(token)
		w.WriteHeader(http.StatusNoContent)
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error(err)
	}
}
