package message

// Format tags the kind of document carried in Message.Body.
type Format string

const (
	FormatMessageML Format = "MESSAGEML"
	FormatText      Format = "TEXT"
)

// Version is a negotiated output document revision.
type Version string

const (
	V1 Version = "1.0"
	V2 Version = "2.0"
)

// ParseVersion accepts "1", "v1", "1.0" and the v2 equivalents.
func ParseVersion(s string) (Version, bool) {
	switch s {
	case "1", "v1", "V1", "1.0":
		return V1, true
	case "2", "v2", "V2", "2.0":
		return V2, true
	}
	return "", false
}

// Message is the output of a parser, ready to be posted to a stream.
type Message struct {
	Format  Format  `json:"format"`
	Version Version `json:"version"`
	Body    string  `json:"message"`
	Data    string  `json:"data,omitempty"` // entity JSON, v2 only
}

// New returns a message whose format and version are always set together.
func New(format Format, version Version, body string) *Message {
	return &Message{Format: format, Version: version, Body: body}
}
