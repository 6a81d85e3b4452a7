package parser

import (
	"context"
	"sync/atomic"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/metrics"
)

// Base carries what every Salesforce parser shares: the directory used to
// resolve mentions and the current settings snapshot.
// Embed it by pointer; it must not be copied after first use.
type Base struct {
	directory identity.Directory
	settings  atomic.Pointer[Settings]
}

// NewBase creates a Base with initial settings. A nil directory resolves nobody.
func NewBase(dir identity.Directory, s Settings) *Base {
	b := &Base{directory: dir}
	b.OnConfigChange(s)
	return b
}

// OnConfigChange swaps in a new settings snapshot. Concurrent parses see
// either the old or the new value.
func (b *Base) OnConfigChange(s Settings) {
	if s.IntegrationName == "" {
		s.IntegrationName = DefaultIntegrationName
	}
	b.settings.Store(&s)
}

// Settings returns the current snapshot.
func (b *Base) Settings() Settings {
	return *b.settings.Load()
}

// lookup resolves email using the service user of the given snapshot.
func (b *Base) lookup(ctx context.Context, s Settings, email string) (*identity.User, error) {
	if b.directory == nil {
		metrics.IdentityLookups.WithLabelValues("not_found").Inc()
		return &identity.User{Email: email}, nil
	}
	u, err := b.directory.LookupUserByEmail(ctx, s.ServiceUser, email)
	switch {
	case err != nil:
		metrics.IdentityLookups.WithLabelValues("error").Inc()
		return nil, err
	case u.Known():
		metrics.IdentityLookups.WithLabelValues("found").Inc()
	default:
		metrics.IdentityLookups.WithLabelValues("not_found").Inc()
	}
	return u, nil
}
