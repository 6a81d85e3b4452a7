package parser

import (
	"fmt"
	"sync/atomic"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
)

// VersionSource reports the document version the downstream consumer
// currently supports.
type VersionSource interface {
	DocumentVersion() message.Version
}

// NegotiatedVersion is a VersionSource updated by the runtime.
type NegotiatedVersion struct {
	v atomic.Value // message.Version
}

// NewNegotiatedVersion starts at v.
func NewNegotiatedVersion(v message.Version) *NegotiatedVersion {
	n := &NegotiatedVersion{}
	n.Set(v)
	return n
}

// Set switches the version seen by subsequent resolutions.
func (n *NegotiatedVersion) Set(v message.Version) { n.v.Store(v) }

// DocumentVersion returns the current version.
func (n *NegotiatedVersion) DocumentVersion() message.Version {
	v, _ := n.v.Load().(message.Version)
	return v
}

// Resolver picks the factory matching the negotiated document version.
type Resolver struct {
	source    VersionSource
	factories map[message.Version]*Factory
	ordered   []*Factory
}

// NewResolver panics when two factories share a version.
func NewResolver(source VersionSource, factories ...*Factory) *Resolver {
	r := &Resolver{source: source, factories: make(map[message.Version]*Factory, len(factories))}
	for _, f := range factories {
		if _, exists := r.factories[f.Version()]; exists {
			panic(fmt.Sprintf("parser resolver: duplicate factory for version %s", f.Version()))
		}
		r.factories[f.Version()] = f
		r.ordered = append(r.ordered, f)
	}
	return r
}

// Factory returns the factory for the current document version.
func (r *Resolver) Factory() (*Factory, error) {
	v := r.source.DocumentVersion()
	f, ok := r.factories[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoFactoryForVersion, v)
	}
	return f, nil
}

// Factories returns every registered factory in registration order.
func (r *Resolver) Factories() []*Factory {
	out := make([]*Factory, len(r.ordered))
	copy(out, r.ordered)
	return out
}
