package identity

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StaticDirectory is an in-memory directory for development and offline use.
type StaticDirectory struct {
	users map[string]User
}

// NewStaticDirectory indexes users by normalised email.
func NewStaticDirectory(users ...User) *StaticDirectory {
	d := &StaticDirectory{users: make(map[string]User, len(users))}
	for _, u := range users {
		d.users[NormalizeEmail(u.Email)] = u
	}
	return d
}

// LoadStaticDirectory reads a YAML file of the form `users: [{id, email, display_name}]`.
func LoadStaticDirectory(path string) (*StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users %s: %w", path, err)
	}
	var doc struct {
		Users []User `yaml:"users"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse users %s: %w", path, err)
	}
	return NewStaticDirectory(doc.Users...), nil
}

// LookupUserByEmail returns the configured user, or a user with no ID when the email is unknown.
func (d *StaticDirectory) LookupUserByEmail(_ context.Context, requestingUser, email string) (*User, error) {
	if requestingUser == "" {
		return nil, ErrRequestingUserRequired
	}
	u, ok := d.users[NormalizeEmail(email)]
	if !ok {
		return notFound(email), nil
	}
	return &u, nil
}

// Len returns the number of known users.
func (d *StaticDirectory) Len() int { return len(d.users) }
