package v1

import (
	"context"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// AccountStatusParser handles the Salesforce account status event. The
// payload is MessageML entity XML; owners and assignees get mention tags
// and the tree is emitted back as MessageML v1.
type AccountStatusParser struct {
	*parser.Base
}

// NewAccountStatusParser returns an AccountStatusParser resolving mentions through dir.
func NewAccountStatusParser(dir identity.Directory, s parser.Settings) *AccountStatusParser {
	return &AccountStatusParser{Base: parser.NewBase(dir, s)}
}

// Events implements parser.EventParser.
func (p *AccountStatusParser) Events() []string {
	return []string{parser.EventAccountStatus}
}

// ParseMarkup annotates owner mentions and renders the v1 message.
func (p *AccountStatusParser) ParseMarkup(ctx context.Context, payload *event.Payload) (*message.Message, error) {
	body, err := parser.RenderMarkup(ctx, parser.EventAccountStatus, payload.Body, p.AccountStatusMentions, entity.XMLSerializer{})
	if err != nil {
		return nil, err
	}
	return message.New(message.FormatMessageML, message.V1, body), nil
}

// ParseFields rejects JSON payloads; this event arrives as markup.
func (p *AccountStatusParser) ParseFields(context.Context, map[string]string, map[string]any) (*message.Message, error) {
	return nil, parser.Unsupported(parser.EventAccountStatus, "markup", "json")
}
