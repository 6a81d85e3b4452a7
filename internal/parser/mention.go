package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/entity"
)

// AnnotateMention resolves the email stored in node's emailAttr attribute and
// attaches a mention keyed by the integration name. Missing nodes, empty
// emails and unknown users are no-ops; only directory failures are errors.
func (b *Base) AnnotateMention(ctx context.Context, node *entity.Entity, emailAttr string) error {
	if node == nil {
		return nil
	}
	email, _ := node.Attr(emailAttr)
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	s := b.Settings()
	u, err := b.lookup(ctx, s, email)
	if err != nil {
		return fmt.Errorf("resolve mention %s: %w", email, err)
	}
	if !u.Known() {
		return nil
	}
	node.Attach(s.IntegrationName, u.MentionEntity(s.IntegrationName))
	return nil
}

// AnnotateMentionsIn applies AnnotateMention to every direct child of root
// with type containerType.
func (b *Base) AnnotateMentionsIn(ctx context.Context, root *entity.Entity, containerType, emailAttr string) error {
	for _, child := range root.ChildrenOfType(containerType) {
		if err := b.AnnotateMention(ctx, child, emailAttr); err != nil {
			return err
		}
	}
	return nil
}

// MentionFor annotates the user entity named userEntityName under parent,
// e.g. the "owner" of an account.
func (b *Base) MentionFor(ctx context.Context, parent *entity.Entity, userEntityName string) error {
	return b.AnnotateMention(ctx, parent.ByName(userEntityName), EmailAddressAttr)
}

// MentionsIn finds the list entity of type listType below root and annotates
// the userEntityName child of each item, e.g. every opportunity owner.
func (b *Base) MentionsIn(ctx context.Context, root *entity.Entity, listType, userEntityName string) error {
	list := root.ByType(listType)
	if list == nil {
		return nil
	}
	for _, item := range list.Entities {
		if err := b.MentionFor(ctx, item, userEntityName); err != nil {
			return err
		}
	}
	return nil
}
