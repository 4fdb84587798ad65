// Package testutil holds helpers shared by the HTTP-level tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// AuthReply is one canned response from the fake auth service
type AuthReply struct {
	Status int
	Body   string
}

// AuthServer is a fake upstream login endpoint that records what it receives
type AuthServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []map[string]string
	reply    AuthReply
}

// NewAuthServer starts a fake auth service answering every request with reply
func NewAuthServer(t testing.TB, reply AuthReply) *AuthServer {
	t.Helper()

	s := &AuthServer{reply: reply}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		s.mu.Lock()
		s.requests = append(s.requests, body)
		reply := s.reply
		s.mu.Unlock()

		if reply.Status == 0 {
			reply.Status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.Status)
		w.Write([]byte(reply.Body))
	}))
	t.Cleanup(s.Close)
	return s
}

// SetReply changes the canned response for subsequent requests
func (s *AuthServer) SetReply(reply AuthReply) {
	s.mu.Lock()
	s.reply = reply
	s.mu.Unlock()
}

// Requests returns the decoded JSON bodies received so far
func (s *AuthServer) Requests() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.requests...)
}

// LoginURL is the fake endpoint's login path
func (s *AuthServer) LoginURL() string {
	return s.URL + "/auth/login"
}
