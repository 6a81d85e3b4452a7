// Package v1 holds the Salesforce parsers that emit MessageML v1.
package v1

import (
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// NewFactory wires every v1 parser against dir.
func NewFactory(dir identity.Directory, s parser.Settings) *parser.Factory {
	return parser.NewFactory(message.V1,
		NewAccountStatusParser(dir, s),
		NewExecutiveReportParser(dir, s),
		NewOpportunityNotificationParser(dir, s),
	)
}
