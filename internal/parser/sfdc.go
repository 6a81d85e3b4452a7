package parser

import (
	"context"
	"errors"
	"strings"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
)

// Salesforce event types.
const (
	EventAccountStatus           = "com.symphony.integration.sfdc.event.accountStatus"
	EventExecutiveReport         = "com.symphony.integration.sfdc.event.executiveReport"
	EventOpportunityNotification = "com.symphony.integration.sfdc.event.opportunityNotification"
)

// Entity types and names found inside Salesforce markup payloads.
const (
	TypeAccount       = "com.symphony.integration.sfdc.account"
	TypeOpportunities = "com.symphony.integration.sfdc.opportunities"
	TypeActivities    = "com.symphony.integration.sfdc.activities"

	Owner    = "owner"
	Assignee = "assignee"

	EmailAddressAttr = "emailAddress"
)

// DefaultIntegrationName keys mention annotations when settings carry no name.
const DefaultIntegrationName = "salesforce"

// AccountStatusMentions annotates the account owner, every opportunity owner
// and every activity assignee.
func (b *Base) AccountStatusMentions(ctx context.Context, root *entity.Entity) error {
	if err := b.MentionFor(ctx, root.ByType(TypeAccount), Owner); err != nil {
		return err
	}
	if err := b.MentionsIn(ctx, root, TypeOpportunities, Owner); err != nil {
		return err
	}
	return b.MentionsIn(ctx, root, TypeActivities, Assignee)
}

// ExecutiveReportMentions annotates the report owner, the account owner and
// every opportunity owner.
func (b *Base) ExecutiveReportMentions(ctx context.Context, root *entity.Entity) error {
	if err := b.MentionFor(ctx, root, Owner); err != nil {
		return err
	}
	if err := b.MentionFor(ctx, root.ByType(TypeAccount), Owner); err != nil {
		return err
	}
	return b.MentionsIn(ctx, root, TypeOpportunities, Owner)
}

// OpportunityOf returns the opportunity object of a JSON notification, found
// under current.Opportunity or at the top level under Opportunity.
func OpportunityOf(body map[string]any) (map[string]any, error) {
	if cur, ok := body["current"].(map[string]any); ok {
		if opp, ok := cur["Opportunity"].(map[string]any); ok {
			return opp, nil
		}
	}
	if opp, ok := body["Opportunity"].(map[string]any); ok {
		return opp, nil
	}
	return nil, errors.New("payload has no Opportunity object")
}

// ActionOf returns the notification action from the transport parameters.
func ActionOf(params map[string]string) string {
	if a := strings.TrimSpace(params["action"]); a != "" {
		return a
	}
	return "updated"
}
