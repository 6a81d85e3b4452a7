package parser

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
)

// Factory owns the event parsers for one document version.
// The registry is built in NewFactory and is read-only afterwards.
type Factory struct {
	version message.Version
	parsers []EventParser
	byEvent map[string]EventParser
}

// NewFactory registers parsers in order. When two parsers claim the same
// event the first one keeps it. A parser declaring no events is a wiring
// defect and panics.
func NewFactory(version message.Version, parsers ...EventParser) *Factory {
	f := &Factory{version: version, byEvent: make(map[string]EventParser)}
	for _, p := range parsers {
		events := p.Events()
		if len(events) == 0 {
			panic(fmt.Sprintf("parser factory %s: %T declares no events", version, p))
		}
		f.parsers = append(f.parsers, p)
		for _, ev := range events {
			if prev, exists := f.byEvent[ev]; exists {
				slog.Warn("duplicate event parser ignored",
					"event", ev, "version", version,
					"kept", fmt.Sprintf("%T", prev), "ignored", fmt.Sprintf("%T", p))
				continue
			}
			f.byEvent[ev] = p
		}
	}
	return f
}

// Version returns the document version this factory produces.
func (f *Factory) Version() message.Version { return f.version }

// Parsers returns the registered parsers in registration order.
func (f *Factory) Parsers() []EventParser {
	out := make([]EventParser, len(f.parsers))
	copy(out, f.parsers)
	return out
}

// Events returns every registered event type, sorted.
func (f *Factory) Events() []string {
	out := make([]string, 0, len(f.byEvent))
	for ev := range f.byEvent {
		out = append(out, ev)
	}
	sort.Strings(out)
	return out
}

// EventOf determines the event type of a payload. Markup payloads carry it
// as the root entity type; JSON payloads rely on the declared type and fall
// back to the body's "type" field.
func (f *Factory) EventOf(p *event.Payload) string {
	switch p.Format {
	case event.WireFormatMarkup:
		if typ, err := entity.PeekType(p.Body); err == nil && typ != "" {
			return typ
		}
	case event.WireFormatJSON:
		if p.EventType != "" {
			return p.EventType
		}
		if body, err := DecodeJSON(p.Body); err == nil {
			if typ, ok := Extract(body, "type").Get(); ok {
				return typ
			}
		}
	}
	return p.EventType
}

// GetParser returns the parser registered for the payload's event type.
func (f *Factory) GetParser(p *event.Payload) (EventParser, error) {
	_, ep, err := f.Resolve(p)
	return ep, err
}

// Resolve determines the payload's event type once and returns it together
// with its parser. The event is returned even when no parser handles it.
func (f *Factory) Resolve(p *event.Payload) (string, EventParser, error) {
	ev := f.EventOf(p)
	if ev == "" {
		return "", nil, fmt.Errorf("%w: event type not set (document version %s)", ErrNoParserForEvent, f.version)
	}
	ep, ok := f.byEvent[ev]
	if !ok {
		return ev, nil, fmt.Errorf("%w: %q (document version %s)", ErrNoParserForEvent, ev, f.version)
	}
	return ev, ep, nil
}

// OnConfigChange forwards settings to every registered parser exactly once.
func (f *Factory) OnConfigChange(s Settings) {
	for _, p := range f.parsers {
		p.OnConfigChange(s)
	}
}
