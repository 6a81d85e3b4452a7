package event

import (
	"bytes"
	"time"
)

// WireFormat is the shape of an inbound webhook body.
type WireFormat string

const (
	WireFormatUnknown WireFormat = "unknown"
	WireFormatMarkup  WireFormat = "markup" // MessageML entity XML
	WireFormatJSON    WireFormat = "json"
)

// Payload is the canonical inbound webhook envelope.
// It is created by the transport layer and must not be mutated afterwards.
type Payload struct {
	ID         string            `json:"id"`
	EventType  string            `json:"event_type"` // declared by the transport, may be empty
	Format     WireFormat        `json:"format"`
	Body       []byte            `json:"-"`
	Params     map[string]string `json:"params"` // query string / header values
	ReceivedAt time.Time         `json:"received_at"`
}

// New builds a Payload, detecting the wire format from the body.
func New(id, eventType string, body []byte, params map[string]string) *Payload {
	if params == nil {
		params = map[string]string{}
	}
	return &Payload{
		ID:         id,
		EventType:  eventType,
		Format:     DetectFormat(body),
		Body:       body,
		Params:     params,
		ReceivedAt: time.Now(),
	}
}

// DetectFormat inspects the first non-blank byte of body.
func DetectFormat(body []byte) WireFormat {
	trimmed := bytes.TrimLeft(body, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return WireFormatUnknown
	}
	switch trimmed[0] {
	case '<':
		return WireFormatMarkup
	case '{', '[':
		return WireFormatJSON
	}
	return WireFormatUnknown
}

// Param returns a transport parameter, or "" when absent.
func (p *Payload) Param(key string) string {
	if p.Params == nil {
		return ""
	}
	return p.Params[key]
}
