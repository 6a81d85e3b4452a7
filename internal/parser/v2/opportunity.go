package v2

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// OpportunityNotificationParser turns JSON opportunity notifications into v2
// entity data. Absent fields are left out of the object.
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

// ParseFields builds the v2 message from the opportunity in body.
func (p *OpportunityNotificationParser) ParseFields(ctx context.Context, params map[string]string, body map[string]any) (*message.Message, error) {
	opp, err := parser.OpportunityOf(body)
	if err != nil {
		return nil, &parser.ParseError{Op: "read opportunity", Event: parser.EventOpportunityNotification, Err: err}
	}

	fields := map[string]any{}
	put(fields, "name", parser.Extract(opp, "Name"))
	put(fields, "link", parser.Extract(opp, "Link"))
	put(fields, "type", parser.Extract(opp, "Type"))
	put(fields, "stage", parser.Extract(opp, "StageName"))
	put(fields, "closeDate", parser.Date(parser.Extract(opp, "CloseDate")))
	put(fields, "amount", parser.Extract(opp, "Amount"))
	put(fields, "currency", parser.Extract(opp, "CurrencyIsoCode"))
	put(fields, "nextStep", parser.Extract(opp, "NextStep"))
	put(fields, "probability", parser.Extract(opp, "Probability"))

	account := map[string]any{}
	put(account, "name", parser.Extract(opp, "Account.Name"))
	put(account, "link", parser.Extract(opp, "Account.Link"))
	if len(account) > 0 {
		fields["account"] = account
	}

	if owner := p.owner(ctx, opp); len(owner) > 0 {
		fields["owner"] = owner
	}

	data, err := json.Marshal(map[string]any{DataKey: map[string]any{
		"type":        parser.EventOpportunityNotification,
		"version":     "1.0",
		"action":      parser.ActionOf(params),
		"opportunity": fields,
	}})
	if err != nil {
		return nil, &parser.ParseError{Op: "build message", Event: parser.EventOpportunityNotification, Err: err}
	}
	return newMessage(string(data)), nil
}

// owner adds a mention object when the owner's email resolves. Lookup
// failures only drop the mention.
func (p *OpportunityNotificationParser) owner(ctx context.Context, opp map[string]any) map[string]any {
	owner := map[string]any{}
	put(owner, "name", parser.Extract(opp, "Owner.Name"))
	email, ok := parser.Extract(opp, "Owner.Email").Get()
	if !ok {
		return owner
	}
	owner["email"] = email

	u, err := p.Lookup(ctx, email)
	if err != nil {
		slog.Warn("owner email lookup failed", "email", email, "err", err)
		return owner
	}
	if u.Known() {
		owner["mention"] = map[string]any{
			"id":          u.ID,
			"integration": p.Settings().IntegrationName,
		}
	}
	return owner
}

func put(m map[string]any, key string, v parser.Optional) {
	if s, ok := v.Get(); ok {
		m[key] = s
	}
}
