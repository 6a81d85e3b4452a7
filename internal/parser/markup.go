package parser

import (
	"context"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
)

// Annotator runs mention passes over a freshly parsed tree.
type Annotator func(ctx context.Context, root *entity.Entity) error

// RenderMarkup parses a markup body, annotates it and serializes the result.
// Every failure is a ParseError naming the step and the event.
func RenderMarkup(ctx context.Context, eventType string, body []byte, annotate Annotator, ser entity.Serializer) (string, error) {
	root, err := entity.Parse(body)
	if err != nil {
		return "", &ParseError{Op: "read markup", Event: eventType, Err: err}
	}
	if annotate != nil {
		if err := annotate(ctx, root); err != nil {
			return "", &ParseError{Op: "resolve mentions", Event: eventType, Err: err}
		}
	}
	out, err := ser.Serialize(root)
	if err != nil {
		return "", &ParseError{Op: "build message", Event: eventType, Err: err}
	}
	return out, nil
}

// Lookup resolves an email with the current service identity.
func (b *Base) Lookup(ctx context.Context, email string) (*identity.User, error) {
	return b.lookup(ctx, b.Settings(), email)
}
