package parser

import (
	"errors"
	"fmt"
)

// Sentinel errors of the parsing pipeline. Match them with errors.Is.
var (
	// ErrParseFailure covers a body that was read but could not be turned into a message.
	ErrParseFailure = errors.New("parse failure")
	// ErrUnsupportedWireFormat is returned when a parser is handed a payload in the wrong format.
	ErrUnsupportedWireFormat = errors.New("unsupported wire format")
	// ErrNoParserForEvent is returned when no parser is registered for the event type.
	ErrNoParserForEvent = errors.New("no parser for event")
	// ErrNoFactoryForVersion is returned when no factory produces the negotiated version.
	ErrNoFactoryForVersion = errors.New("no parser factory for document version")
)

// ParseError reports a body that could not be turned into a message.
// It matches ErrParseFailure with errors.Is.
type ParseError struct {
	Op    string
	Event string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failure: %s for event %s: %v", e.Op, e.Event, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParseFailure }

// Unsupported builds the error a parser returns when called through the wrong entry point.
func Unsupported(eventType string, expected, got string) error {
	return fmt.Errorf("%w: %s expects a %s payload but received %s", ErrUnsupportedWireFormat, eventType, expected, got)
}
