// Package integration is the Salesforce webhook entry point: it resolves the
// parser for a payload, runs it and fans settings changes out to every parser.
package integration

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/config"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/metrics"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// Integration ties a resolver to the factories it chooses from.
// Parse is safe for concurrent use with OnConfigChange.
type Integration struct {
	resolver  *parser.Resolver
	factories []*parser.Factory
	version   *parser.NegotiatedVersion
	settings  atomic.Pointer[config.IntegrationConf]
}

// New builds an Integration over factories and applies the initial settings.
// It panics when two factories share a document version.
func New(cfg config.IntegrationConf, factories ...*parser.Factory) *Integration {
	v, ok := message.ParseVersion(cfg.DocumentVersion)
	if !ok {
		v = message.V1
	}
	version := parser.NewNegotiatedVersion(v)
	i := &Integration{
		resolver:  parser.NewResolver(version, factories...),
		factories: factories,
		version:   version,
	}
	i.OnConfigChange(cfg)
	return i
}

// UnknownEvent labels metrics for payloads whose event has no parser.
const UnknownEvent = "unknown"

// Parse turns one webhook payload into a message for the negotiated
// document version.
func (i *Integration) Parse(ctx context.Context, p *event.Payload) (*message.Message, error) {
	msg, _, err := i.ParseEvent(ctx, p)
	return msg, err
}

// ParseEvent is Parse that also reports the resolved event type. The event
// is empty when no parser handles the payload.
func (i *Integration) ParseEvent(ctx context.Context, p *event.Payload) (*message.Message, string, error) {
	start := time.Now()
	version := i.version.DocumentVersion()

	msg, ev, err := i.parse(ctx, p)
	metrics.ParseDuration.Observe(float64(time.Since(start).Milliseconds()))
	label := ev
	if label == "" {
		label = UnknownEvent
	}
	metrics.MessagesParsed.WithLabelValues(label, string(version), status(err)).Inc()
	if err != nil {
		slog.Warn("payload rejected",
			"id", p.ID, "event", label, "declared", p.EventType, "version", version, "format", p.Format, "err", err)
		return nil, ev, err
	}
	slog.Debug("payload parsed", "id", p.ID, "event", ev, "version", msg.Version)
	return msg, ev, nil
}

// parse reports the event only once a registered parser claims it.
func (i *Integration) parse(ctx context.Context, p *event.Payload) (*message.Message, string, error) {
	f, err := i.resolver.Factory()
	if err != nil {
		return nil, "", err
	}
	ev, ep, err := f.Resolve(p)
	if err != nil {
		return nil, "", err
	}
	msg, err := parser.Parse(ctx, ep, p)
	return msg, ev, err
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, parser.ErrNoParserForEvent):
		return "no_parser"
	case errors.Is(err, parser.ErrUnsupportedWireFormat):
		return "unsupported_format"
	case errors.Is(err, parser.ErrNoFactoryForVersion):
		return "no_factory"
	case errors.Is(err, parser.ErrParseFailure):
		return "parse_failure"
	}
	return "error"
}

// OnConfigChange stores the new snapshot, switches the negotiated version
// when the new one is recognised, then notifies each factory exactly once.
func (i *Integration) OnConfigChange(cfg config.IntegrationConf) {
	i.settings.Store(&cfg)
	if v, ok := message.ParseVersion(cfg.DocumentVersion); ok {
		i.version.Set(v)
	} else if cfg.DocumentVersion != "" {
		slog.Warn("unknown document version ignored", "version", cfg.DocumentVersion)
	}
	s := cfg.Parser()
	for _, f := range i.factories {
		f.OnConfigChange(s)
	}
	slog.Info("integration settings applied",
		"integration", s.IntegrationName, "version", i.version.DocumentVersion(), "factories", len(i.factories))
}

// Bind subscribes the integration to settings reloads. The loader only
// publishes settings that passed validation.
func (i *Integration) Bind(loader *config.Loader) {
	loader.OnChange(func(cfg *config.Settings) {
		i.OnConfigChange(cfg.Integration)
	})
}

// Settings returns the last applied snapshot.
func (i *Integration) Settings() config.IntegrationConf {
	return *i.settings.Load()
}

// DocumentVersion returns the version new payloads are parsed for.
func (i *Integration) DocumentVersion() message.Version {
	return i.version.DocumentVersion()
}

// Events returns the event types the current factory handles.
func (i *Integration) Events() []string {
	f, err := i.resolver.Factory()
	if err != nil {
		return nil
	}
	return f.Events()
}

// SupportedContentTypes lists the media types accepted on the webhook.
// Format detection is done on the body, so everything is accepted.
func (i *Integration) SupportedContentTypes() []string {
	return []string{"*/*"}
}

// Accepts reports whether contentType matches SupportedContentTypes. An
// empty content type is accepted.
func (i *Integration) Accepts(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, supported := range i.SupportedContentTypes() {
		if matchMediaType(supported, mediaType) {
			return true
		}
	}
	return false
}

func matchMediaType(pattern, mediaType string) bool {
	if pattern == "*/*" || pattern == mediaType {
		return true
	}
	prefix, ok := strings.CutSuffix(pattern, "/*")
	return ok && strings.HasPrefix(mediaType, prefix+"/")
}
