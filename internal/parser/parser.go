package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
)

// Settings is the externally supplied configuration every parser receives
// through OnConfigChange.
type Settings struct {
	IntegrationName string
	ServiceUser     string // contextual identity for directory lookups
}

// EventParser turns one kind of Salesforce payload into a message.
// Implementations must be safe for concurrent use.
type EventParser interface {
	// Events returns the non-empty set of event types this parser handles.
	Events() []string
	// ParseMarkup handles MessageML entity payloads.
	ParseMarkup(ctx context.Context, p *event.Payload) (*message.Message, error)
	// ParseFields handles JSON payloads.
	ParseFields(ctx context.Context, params map[string]string, body map[string]any) (*message.Message, error)
	// OnConfigChange replaces the parser's settings snapshot.
	OnConfigChange(s Settings)
}

// Parse routes the payload to the entry point matching its wire format.
func Parse(ctx context.Context, ep EventParser, p *event.Payload) (*message.Message, error) {
	var (
		msg *message.Message
		err error
	)
	switch p.Format {
	case event.WireFormatMarkup:
		msg, err = ep.ParseMarkup(ctx, p)
	case event.WireFormatJSON:
		body, derr := DecodeJSON(p.Body)
		if derr != nil {
			return nil, &ParseError{Op: "decode json body", Event: p.EventType, Err: derr}
		}
		msg, err = ep.ParseFields(ctx, p.Params, body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedWireFormat, p.Format)
	}
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.Format == "" || msg.Version == "" {
		return nil, &ParseError{Op: "build message", Event: p.EventType, Err: errors.New("parser returned an untagged message")}
	}
	return msg, nil
}

// DecodeJSON decodes a JSON object, keeping numbers as json.Number.
func DecodeJSON(body []byte) (map[string]any, error) {
	d := json.NewDecoder(bytes.NewReader(body))
	d.UseNumber()
	var out map[string]any
	if err := d.Decode(&out); err != nil {
		return nil, fmt.Errorf("json body must be an object: %w", err)
	}
	if out == nil {
		return nil, errors.New("json body must be an object")
	}
	return out, nil
}
