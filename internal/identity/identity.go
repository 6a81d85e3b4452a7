package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
)

// MentionEntityType is the entity type of a mention annotation.
const MentionEntityType = "com.symphony.integration.mention"

// ErrRequestingUserRequired is returned when a lookup is attempted without a
// contextual service identity.
var ErrRequestingUserRequired = errors.New("identity: requesting user is required")

// User is a platform user. ID is zero when the email did not resolve.
type User struct {
	ID          int64  `json:"id,omitempty" yaml:"id"`
	Email       string `json:"emailAddress" yaml:"email"`
	DisplayName string `json:"displayName,omitempty" yaml:"display_name"`
	Username    string `json:"username,omitempty" yaml:"username"`
}

// Known reports whether the user resolved to a platform identity.
func (u *User) Known() bool {
	return u != nil && u.ID != 0
}

// MentionEntity builds the mention annotation for this user, scoped to integration.
func (u *User) MentionEntity(integration string) *entity.Entity {
	m := entity.New("mention", MentionEntityType)
	m.SetAttr("id", entity.AttrTypeLong, strconv.FormatInt(u.ID, 10))
	if u.DisplayName != "" {
		m.SetAttr("name", entity.AttrTypeString, u.DisplayName)
	}
	m.SetAttr("emailAddress", entity.AttrTypeString, u.Email)
	m.SetAttr("integration", entity.AttrTypeString, integration)
	return m
}

// Directory resolves emails to platform users on behalf of a requesting user.
// A missing user is reported as a User with Known() == false and a nil error;
// errors are reserved for transport or backend failures.
type Directory interface {
	LookupUserByEmail(ctx context.Context, requestingUser, email string) (*User, error)
}

// NormalizeEmail lower-cases and trims an address for comparison and cache keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func notFound(email string) *User {
	return &User{Email: email}
}
