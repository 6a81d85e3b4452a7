package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/config"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
)

const validYAML = `
version: "1"
integration:
  service_user: bot@acme.com
identity:
  base_url: https://pod.example.com
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewLoader_AppliesDefaults(t *testing.T) {
	l, err := config.NewLoader(writeConfig(t, validYAML))
	require.NoError(t, err)

	cfg := l.Config()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.EqualValues(t, 1<<20, cfg.Server.MaxBodyBytes)
	assert.Equal(t, "salesforce", cfg.Integration.Name)
	assert.Equal(t, "1.0", cfg.Integration.DocumentVersion)
	assert.Equal(t, 3000, cfg.Identity.TimeoutMs)
	assert.Equal(t, 300, cfg.Identity.Cache.TTLSeconds)
	assert.NoError(t, config.Validate(cfg))

	ps := cfg.Integration.Parser()
	assert.Equal(t, "salesforce", ps.IntegrationName)
	assert.Equal(t, "bot@acme.com", ps.ServiceUser)
}

func TestNewLoader_Errors(t *testing.T) {
	_, err := config.NewLoader(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	_, err = config.NewLoader(writeConfig(t, "version: [unterminated"))
	assert.ErrorContains(t, err, "parse config")

	_, err = config.NewLoader(writeConfig(t, "version: \"1\"\n"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestReload_NotifiesCallbacksInOrder(t *testing.T) {
	path := writeConfig(t, validYAML)
	l, err := config.NewLoader(path)
	require.NoError(t, err)

	var seen []string
	l.OnChange(func(cfg *config.Settings) { seen = append(seen, "first:"+cfg.Integration.ServiceUser) })
	l.OnChange(func(cfg *config.Settings) { seen = append(seen, "second:"+cfg.Integration.DocumentVersion) })

	updated := `
version: "1"
integration:
  service_user: new-bot@acme.com
  document_version: "2.0"
identity:
  base_url: https://pod.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	cfg, err := l.Reload()
	require.NoError(t, err)
	assert.Same(t, cfg, l.Config())
	assert.Equal(t, []string{"first:new-bot@acme.com", "second:2.0"}, seen)
}

func TestReload_FailureKeepsPreviousSettings(t *testing.T) {
	path := writeConfig(t, validYAML)
	l, err := config.NewLoader(path)
	require.NoError(t, err)
	before := l.Config()

	called := false
	l.OnChange(func(*config.Settings) { called = true })
	require.NoError(t, os.WriteFile(path, []byte("integration: ["), 0o600))

	_, err = l.Reload()
	assert.Error(t, err)
	assert.Same(t, before, l.Config())
	assert.False(t, called)
}

func TestReload_InvalidSettingsKeepPrevious(t *testing.T) {
	path := writeConfig(t, validYAML)
	l, err := config.NewLoader(path)
	require.NoError(t, err)
	before := l.Config()

	called := false
	l.OnChange(func(*config.Settings) { called = true })
	require.NoError(t, os.WriteFile(path, []byte(validYAML+"server:\n  max_body_bytes: -1\n"), 0o600))

	_, err = l.Reload()
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.ErrorContains(t, err, "max_body_bytes must not be negative")
	assert.Same(t, before, l.Config())
	assert.EqualValues(t, 1<<20, l.Config().Server.MaxBodyBytes)
	assert.False(t, called)
}

func TestValidate(t *testing.T) {
	base := func() *config.Settings {
		cfg, err := config.Parse([]byte(validYAML))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{"valid", func(*config.Settings) {}, ""},
		{"missing version", func(c *config.Settings) { c.Version = "" }, "version is required"},
		{"missing service user", func(c *config.Settings) { c.Integration.ServiceUser = " " }, "service_user is required"},
		{"bad document version", func(c *config.Settings) { c.Integration.DocumentVersion = "3.0" }, "document_version"},
		{"no directory", func(c *config.Settings) { c.Identity.BaseURL = "" }, "one of base_url or users"},
		{"relative base url", func(c *config.Settings) { c.Identity.BaseURL = "/pod" }, "not an absolute URL"},
		{"cache without redis", func(c *config.Settings) { c.Identity.Cache.Enabled = true }, "redis_url is required"},
		{"static users win over base url", func(c *config.Settings) {
			c.Identity.BaseURL = ""
			c.Identity.Users = []identity.User{{ID: 1, Email: "a@b.com"}}
		}, ""},
		{"duplicate users", func(c *config.Settings) {
			c.Identity.Users = []identity.User{{ID: 1, Email: "a@b.com"}, {ID: 2, Email: "A@B.com "}}
		}, "duplicate user"},
		{"user without id", func(c *config.Settings) {
			c.Identity.Users = []identity.User{{Email: "a@b.com"}}
		}, "id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := config.Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, config.ErrInvalid)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
