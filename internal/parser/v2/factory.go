package v2

import (
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// NewFactory wires every v2 parser against dir.
func NewFactory(dir identity.Directory, s parser.Settings) *parser.Factory {
	return parser.NewFactory(message.V2,
		NewAccountStatusParser(dir, s),
		NewExecutiveReportParser(dir, s),
		NewOpportunityNotificationParser(dir, s),
	)
}
