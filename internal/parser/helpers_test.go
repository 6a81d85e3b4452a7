package parser_test

import (
	"context"
	"errors"
	"sync"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

var errDirectoryDown = errors.New("directory unavailable")

// fakeDirectory resolves a fixed set of emails and records who asked.
type fakeDirectory struct {
	mu          sync.Mutex
	users       map[string]int64
	fail        map[string]bool
	requestedBy []string
}

func newFakeDirectory(users map[string]int64) *fakeDirectory {
	return &fakeDirectory{users: users, fail: map[string]bool{}}
}

func (f *fakeDirectory) LookupUserByEmail(_ context.Context, requestingUser, email string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestedBy = append(f.requestedBy, requestingUser)
	if f.fail[email] {
		return nil, errDirectoryDown
	}
	if id, ok := f.users[email]; ok {
		return &identity.User{ID: id, Email: email, DisplayName: "User " + email}, nil
	}
	return &identity.User{Email: email}, nil
}

func (f *fakeDirectory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requestedBy)
}

// stubParser records calls and returns a canned message.
type stubParser struct {
	name     string
	events   []string
	settings []parser.Settings
	markup   int
	fields   int
	lastBody map[string]any
	untagged bool
}

func (s *stubParser) Events() []string { return s.events }

func (s *stubParser) ParseMarkup(context.Context, *event.Payload) (*message.Message, error) {
	s.markup++
	if s.untagged {
		return &message.Message{Body: "x"}, nil
	}
	return message.New(message.FormatMessageML, message.V1, s.name), nil
}

func (s *stubParser) ParseFields(_ context.Context, _ map[string]string, body map[string]any) (*message.Message, error) {
	s.fields++
	s.lastBody = body
	return message.New(message.FormatText, message.V1, s.name), nil
}

func (s *stubParser) OnConfigChange(st parser.Settings) { s.settings = append(s.settings, st) }

func markupPayload(eventType string) *event.Payload {
	return event.New("id-1", "", []byte(`<messageML><entity type="`+eventType+`" version="1.0"/></messageML>`), nil)
}

func jsonPayload(declared, body string) *event.Payload {
	return event.New("id-2", declared, []byte(body), nil)
}
