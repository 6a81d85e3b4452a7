// Package v2 holds the Salesforce parsers that emit MessageML v2: a
// presentation template in the body plus the entity data as JSON.
package v2

import (
	"context"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// DataKey is the top-level key of the v2 entity data object.
const DataKey = "salesforce"

// Template is rendered by clients without the Salesforce renderer installed.
const Template = `<messageML><div class="entity" data-entity-id="` + DataKey + `">` +
	`<b><i>Please install the Salesforce application to render this entity.</i></b></div></messageML>`

func newMessage(data string) *message.Message {
	msg := message.New(message.FormatMessageML, message.V2, Template)
	msg.Data = data
	return msg
}

// AccountStatusParser emits the annotated account status tree as v2 data.
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

// ParseMarkup annotates owner mentions and renders the v2 message.
func (p *AccountStatusParser) ParseMarkup(ctx context.Context, payload *event.Payload) (*message.Message, error) {
	data, err := parser.RenderMarkup(ctx, parser.EventAccountStatus, payload.Body, p.AccountStatusMentions, entity.JSONSerializer{Key: DataKey})
	if err != nil {
		return nil, err
	}
	return newMessage(data), nil
}

// ParseFields rejects JSON payloads; this event arrives as markup.
func (p *AccountStatusParser) ParseFields(context.Context, map[string]string, map[string]any) (*message.Message, error) {
	return nil, parser.Unsupported(parser.EventAccountStatus, "markup", "json")
}

// ExecutiveReportParser emits the annotated executive report tree as v2 data.
type ExecutiveReportParser struct {
	*parser.Base
}

// NewExecutiveReportParser returns an ExecutiveReportParser resolving mentions through dir.
func NewExecutiveReportParser(dir identity.Directory, s parser.Settings) *ExecutiveReportParser {
	return &ExecutiveReportParser{Base: parser.NewBase(dir, s)}
}

// Events implements parser.EventParser.
func (p *ExecutiveReportParser) Events() []string {
	return []string{parser.EventExecutiveReport}
}

// ParseMarkup annotates owner mentions and renders the v2 message.
func (p *ExecutiveReportParser) ParseMarkup(ctx context.Context, payload *event.Payload) (*message.Message, error) {
	data, err := parser.RenderMarkup(ctx, parser.EventExecutiveReport, payload.Body, p.ExecutiveReportMentions, entity.JSONSerializer{Key: DataKey})
	if err != nil {
		return nil, err
	}
	return newMessage(data), nil
}

// ParseFields rejects JSON payloads; this event arrives as markup.
func (p *ExecutiveReportParser) ParseFields(context.Context, map[string]string, map[string]any) (*message.Message, error) {
	return nil, parser.Unsupported(parser.EventExecutiveReport, "markup", "json")
}
