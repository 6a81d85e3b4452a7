package v1

import (
	"context"
	"html"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// OpportunityNotificationParser renders JSON opportunity notifications as a
// MessageML v1 text document, one field per line.
type OpportunityNotificationParser struct {
	*parser.Base
}

// NewOpportunityNotificationParser returns an OpportunityNotificationParser resolving mentions through dir.
func NewOpportunityNotificationParser(dir identity.Directory, s parser.Settings) *OpportunityNotificationParser {
	return &OpportunityNotificationParser{Base: parser.NewBase(dir, s)}
}

// Events implements parser.EventParser.
func (p *OpportunityNotificationParser) Events() []string {
	return []string{parser.EventOpportunityNotification}
}

// ParseMarkup rejects markup payloads; this event arrives as JSON.
func (p *OpportunityNotificationParser) ParseMarkup(context.Context, *event.Payload) (*message.Message, error) {
	return nil, parser.Unsupported(parser.EventOpportunityNotification, "json", "markup")
}

// ParseFields builds the v1 message from the opportunity in body.
func (p *OpportunityNotificationParser) ParseFields(ctx context.Context, params map[string]string, body map[string]any) (*message.Message, error) {
	opp, err := parser.OpportunityOf(body)
	if err != nil {
		return nil, &parser.ParseError{Op: "read opportunity", Event: parser.EventOpportunityNotification, Err: err}
	}

	title := "Opportunity"
	if name, ok := parser.Extract(opp, "Name").Get(); ok {
		title += " <b>" + html.EscapeString(name) + "</b>"
	}
	header := parser.Join(title, html.EscapeString(parser.ActionOf(params)), parser.Link(parser.Extract(opp, "Link")))

	text := parser.Lines(
		header,
		parser.Join(parser.AccountName(opp), parser.AccountLink(opp)),
		parser.Join(parser.OwnerName(opp), p.OwnerEmail(ctx, opp)),
		parser.TypeOf(opp),
		parser.StageName(opp),
		parser.CloseDate(opp),
		parser.Join(parser.Amount(opp), parser.CurrencyIsoCode(opp)),
		parser.NextStep(opp),
		parser.Probability(opp),
	)
	return message.New(message.FormatMessageML, message.V1, "<messageML>"+text+"</messageML>"), nil
}
