package config

import (
	"time"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// Settings is the top-level YAML structure.
type Settings struct {
	Version     string          `yaml:"version" json:"version"`
	Server      ServerConf      `yaml:"server" json:"server"`
	Integration IntegrationConf `yaml:"integration" json:"integration"`
	Identity    IdentityConf    `yaml:"identity" json:"identity"`
}

// ServerConf holds HTTP transport settings.
type ServerConf struct {
	Addr         string `yaml:"addr" json:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" json:"max_body_bytes"`
}

// IntegrationConf is what the parsers see on every settings change.
type IntegrationConf struct {
	Name            string `yaml:"name" json:"name"`
	ServiceUser     string `yaml:"service_user" json:"service_user"`
	DocumentVersion string `yaml:"document_version" json:"document_version"`
}

// Parser returns the parser settings snapshot for this integration.
func (c IntegrationConf) Parser() parser.Settings {
	return parser.Settings{IntegrationName: c.Name, ServiceUser: c.ServiceUser}
}

// IdentityConf selects and tunes the user directory.
// A non-empty Users list wins over BaseURL.
type IdentityConf struct {
	BaseURL   string          `yaml:"base_url" json:"base_url"`
	TimeoutMs int             `yaml:"timeout_ms" json:"timeout_ms"`
	Cache     CacheConf       `yaml:"cache" json:"cache"`
	Users     []identity.User `yaml:"users" json:"users,omitempty"`
}

// Timeout returns TimeoutMs as a duration.
func (c IdentityConf) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CacheConf configures the Redis lookup cache.
type CacheConf struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	RedisURL   string `yaml:"redis_url" json:"-"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
}

// TTL returns TTLSeconds as a duration.
func (c CacheConf) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
