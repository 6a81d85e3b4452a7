package v1

import (
	"context"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// ExecutiveReportParser handles the executive report event (MessageML markup).
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

// ParseMarkup annotates owner mentions and renders the v1 message.
func (p *ExecutiveReportParser) ParseMarkup(ctx context.Context, payload *event.Payload) (*message.Message, error) {
	body, err := parser.RenderMarkup(ctx, parser.EventExecutiveReport, payload.Body, p.ExecutiveReportMentions, entity.XMLSerializer{})
	if err != nil {
		return nil, err
	}
	return message.New(message.FormatMessageML, message.V1, body), nil
}

// ParseFields rejects JSON payloads; this event arrives as markup.
func (p *ExecutiveReportParser) ParseFields(context.Context, map[string]string, map[string]any) (*message.Message, error) {
	return nil, parser.Unsupported(parser.EventExecutiveReport, "markup", "json")
}
