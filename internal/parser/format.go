package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// SourceDateLayout is the date pattern Salesforce sends (yyyy-MM-dd).
const SourceDateLayout = "2006-01-02"

// Optional is a field value that may be absent.
type Optional struct {
	value string
	ok    bool
}

// Some returns a present value, or None when v is blank after trimming.
func Some(v string) Optional {
	v = strings.TrimSpace(v)
	if v == "" {
		return None()
	}
	return Optional{value: v, ok: true}
}

// None is the absent value.
func None() Optional { return Optional{} }

// Get returns the value and whether it is present.
func (o Optional) Get() (string, bool) { return o.value, o.ok }

// IsPresent reports whether a value is set.
func (o Optional) IsPresent() bool { return o.ok }

// OrElse returns the value, or def when absent.
func (o Optional) OrElse(def string) string {
	if !o.ok {
		return def
	}
	return o.value
}

// Extract walks a dot-separated path (e.g. "Owner.Name") into a decoded JSON
// object. Any missing segment, non-scalar terminal or blank value is None.
func Extract(node map[string]any, path string) Optional {
	if node == nil || path == "" {
		return None()
	}
	segments := strings.Split(path, ".")
	var cur any = node
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return None()
		}
		cur, ok = m[seg]
		if !ok {
			return None()
		}
	}
	switch v := cur.(type) {
	case string:
		return Some(v)
	case json.Number:
		return Some(v.String())
	case float64:
		return Some(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		return Some(strconv.FormatBool(v))
	}
	return None()
}

// Format renders "<label>: <value>", or "" when v is absent.
func Format(label string, v Optional) string {
	s, ok := v.Get()
	if !ok {
		return ""
	}
	return label + ": " + html.EscapeString(s)
}

// Date re-renders a yyyy-MM-dd value; unparseable input is None.
func Date(v Optional) Optional {
	s, ok := v.Get()
	if !ok {
		return None()
	}
	t, err := time.Parse(SourceDateLayout, s)
	if err != nil {
		return None()
	}
	return Some(t.Format(SourceDateLayout))
}

// Link renders a URL as "(<a href="…"/>)", or "" when absent.
func Link(v Optional) string {
	s, ok := v.Get()
	if !ok {
		return ""
	}
	return fmt.Sprintf(`(<a href="%s"/>)`, html.EscapeString(s))
}

// OwnerName renders the "Opportunity Owner" line from Owner.Name.
func OwnerName(node map[string]any) string {
	return Format("Opportunity Owner", Extract(node, "Owner.Name"))
}

// TypeOf renders the opportunity "Type" line.
func TypeOf(node map[string]any) string {
	return Format("Type", Extract(node, "Type"))
}

// StageName renders the "Stage" line.
func StageName(node map[string]any) string {
	return Format("Stage", Extract(node, "StageName"))
}

// CloseDate renders the "Close Date" line in display layout.
func CloseDate(node map[string]any) string {
	return Format("Close Date", Date(Extract(node, "CloseDate")))
}

// AccountName renders the "Account Name" line from Account.Name.
func AccountName(node map[string]any) string {
	return Format("Account Name", Extract(node, "Account.Name"))
}

// AccountLink renders Account.Link as a link, or "".
func AccountLink(node map[string]any) string {
	return Link(Extract(node, "Account.Link"))
}

// Amount renders the "Amount" line without currency.
func Amount(node map[string]any) string {
	return Format("Amount", Extract(node, "Amount"))
}

// NextStep renders "-" when Salesforce leaves the step blank.
func NextStep(node map[string]any) string {
	return Format("Next Step", Some(Extract(node, "NextStep").OrElse("-")))
}

// Probability renders the "Probability" line.
func Probability(node map[string]any) string {
	return Format("Probability", Extract(node, "Probability"))
}

// CurrencyIsoCode returns the escaped currency code, or "".
func CurrencyIsoCode(node map[string]any) string {
	s, ok := Extract(node, "CurrencyIsoCode").Get()
	if !ok {
		return ""
	}
	return html.EscapeString(s)
}

// OwnerEmail renders Owner.Email as a mention when the user is known on the
// platform and as "(email)" otherwise. Lookup failures degrade to the
// parenthesized form.
func (b *Base) OwnerEmail(ctx context.Context, node map[string]any) string {
	email, ok := Extract(node, "Owner.Email").Get()
	if !ok {
		return ""
	}
	escaped := html.EscapeString(email)

	u, err := b.lookup(ctx, b.Settings(), email)
	if err != nil {
		slog.Warn("owner email lookup failed", "email", email, "err", err)
		return "(" + escaped + ")"
	}
	if u.Known() {
		return fmt.Sprintf(`<mention email="%s"/>`, escaped)
	}
	return "(" + escaped + ")"
}

// Lines joins non-empty fragments with a MessageML line break.
func Lines(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "<br/>")
}

// Join joins non-empty fragments with a single space.
func Join(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
