package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/identity"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
)

// ErrInvalid marks settings that parsed but failed validation.
var ErrInvalid = errors.New("config validation errors")

// Validate checks the settings for:
//   - Required fields (version, service user, a directory source)
//   - A known document version
//   - Well-formed URLs and non-negative limits
//   - Duplicate or incomplete static users
func Validate(cfg *Settings) error {
	if cfg.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalid)
	}
	var errs []string

	if cfg.Server.MaxBodyBytes < 0 {
		errs = append(errs, "server.max_body_bytes must not be negative")
	}

	if strings.TrimSpace(cfg.Integration.ServiceUser) == "" {
		errs = append(errs, "integration.service_user is required")
	}
	if _, ok := message.ParseVersion(cfg.Integration.DocumentVersion); !ok {
		errs = append(errs, fmt.Sprintf("integration.document_version %q is not 1.0 or 2.0", cfg.Integration.DocumentVersion))
	}

	id := cfg.Identity
	switch {
	case len(id.Users) > 0:
		validateUsers(id.Users, &errs)
	case id.BaseURL == "":
		errs = append(errs, "identity: one of base_url or users must be set")
	default:
		if u, err := url.Parse(id.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("identity.base_url %q is not an absolute URL", id.BaseURL))
		}
	}
	if id.TimeoutMs < 0 {
		errs = append(errs, "identity.timeout_ms must not be negative")
	}
	if id.Cache.Enabled {
		if id.Cache.RedisURL == "" {
			errs = append(errs, "identity.cache.redis_url is required when the cache is enabled")
		}
		if id.Cache.TTLSeconds < 0 {
			errs = append(errs, "identity.cache.ttl_seconds must not be negative")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(errs, "\n  - "))
	}
	return nil
}

func validateUsers(users []identity.User, errs *[]string) {
	seen := make(map[string]int)
	for i, u := range users {
		email := identity.NormalizeEmail(u.Email)
		if email == "" {
			*errs = append(*errs, fmt.Sprintf("identity.users[%d]: email is required", i))
			continue
		}
		if u.ID == 0 {
			*errs = append(*errs, fmt.Sprintf("identity.users[%d]: id is required", i))
		}
		if prev, ok := seen[email]; ok {
			*errs = append(*errs, fmt.Sprintf("duplicate user %q (first seen at users[%d], again at users[%d])", email, prev, i))
			continue
		}
		seen[email] = i
	}
}
