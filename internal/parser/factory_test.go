package parser_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/event"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
	v1 "github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser/v1"
	v2 "github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser/v2"
)

func payloadFor(ev string) *event.Payload {
	if ev == parser.EventOpportunityNotification {
		return jsonPayload("", `{"type":"`+ev+`","current":{"Opportunity":{}}}`)
	}
	return markupPayload(ev)
}

func TestFactory_GetParserForEverySupportedEvent(t *testing.T) {
	dir := newFakeDirectory(nil)
	for _, f := range []*parser.Factory{
		v1.NewFactory(dir, parser.Settings{}),
		v2.NewFactory(dir, parser.Settings{}),
	} {
		require.NotEmpty(t, f.Events())
		for _, ev := range f.Events() {
			t.Run(string(f.Version())+"/"+ev, func(t *testing.T) {
				p, err := f.GetParser(payloadFor(ev))
				require.NoError(t, err)
				assert.True(t, slices.Contains(p.Events(), ev))
			})
		}
	}
}

func TestFactory_UnknownOrUnsetEvent(t *testing.T) {
	f := v1.NewFactory(newFakeDirectory(nil), parser.Settings{})

	cases := map[string]*event.Payload{
		"unknown markup type": markupPayload("com.symphony.integration.sfdc.event.unknown"),
		"unknown json type":   jsonPayload("com.example.other", `{}`),
		"unset json type":     jsonPayload("", `{"current":{}}`),
		"unreadable markup":   event.New("x", "", []byte("<messageML>"), nil),
		"unknown format":      event.New("x", "", []byte("plain text"), nil),
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.GetParser(p)
			assert.ErrorIs(t, err, parser.ErrNoParserForEvent)
		})
	}
}

func TestFactory_EventOf(t *testing.T) {
	f := parser.NewFactory(message.V1, &stubParser{events: []string{"a"}})

	// Markup: the root entity wins over the declared type.
	p := markupPayload("a")
	p.EventType = "declared"
	assert.Equal(t, "a", f.EventOf(p))

	// Markup that cannot be read falls back to the declared type.
	assert.Equal(t, "declared", f.EventOf(event.New("x", "declared", []byte("<broken"), nil)))

	// JSON: declared type first, then body "type".
	assert.Equal(t, "declared", f.EventOf(jsonPayload("declared", `{"type":"a"}`)))
	assert.Equal(t, "a", f.EventOf(jsonPayload("", `{"type":"a"}`)))
}

func TestFactory_ResolveReturnsEventWithParser(t *testing.T) {
	a := &stubParser{events: []string{"a"}}
	f := parser.NewFactory(message.V1, a)

	ev, ep, err := f.Resolve(markupPayload("a"))
	require.NoError(t, err)
	assert.Equal(t, "a", ev)
	assert.Same(t, a, ep)

	ev, ep, err = f.Resolve(jsonPayload("", `{"type":"z"}`))
	assert.ErrorIs(t, err, parser.ErrNoParserForEvent)
	assert.Equal(t, "z", ev)
	assert.Nil(t, ep)

	ev, _, err = f.Resolve(jsonPayload("", `{}`))
	assert.ErrorIs(t, err, parser.ErrNoParserForEvent)
	assert.Empty(t, ev)
}

func TestFactory_DuplicateEventFirstRegisteredWins(t *testing.T) {
	first := &stubParser{name: "first", events: []string{"a", "b"}}
	second := &stubParser{name: "second", events: []string{"b", "c"}}
	f := parser.NewFactory(message.V1, first, second)

	for ev, want := range map[string]*stubParser{"a": first, "b": first, "c": second} {
		got, err := f.GetParser(jsonPayload(ev, `{}`))
		require.NoError(t, err)
		assert.Same(t, want, got, ev)
	}
	assert.Equal(t, []string{"a", "b", "c"}, f.Events())
	assert.Len(t, f.Parsers(), 2)
}

func TestFactory_NoEventsPanics(t *testing.T) {
	assert.Panics(t, func() {
		parser.NewFactory(message.V1, &stubParser{name: "empty"})
	})
}

func TestFactory_OnConfigChangeReachesEachParserOnce(t *testing.T) {
	multi := &stubParser{events: []string{"a", "b"}}
	single := &stubParser{events: []string{"c"}}
	f := parser.NewFactory(message.V1, multi, single)

	s := parser.Settings{IntegrationName: "salesforce", ServiceUser: "bot"}
	f.OnConfigChange(s)

	assert.Equal(t, []parser.Settings{s}, multi.settings)
	assert.Equal(t, []parser.Settings{s}, single.settings)
}

func TestParse_RoutesByWireFormat(t *testing.T) {
	sp := &stubParser{name: "stub", events: []string{"a"}}
	ctx := context.Background()

	msg, err := parser.Parse(ctx, sp, markupPayload("a"))
	require.NoError(t, err)
	assert.Equal(t, message.FormatMessageML, msg.Format)
	assert.Equal(t, 1, sp.markup)

	msg, err = parser.Parse(ctx, sp, jsonPayload("a", `{"k":"v"}`))
	require.NoError(t, err)
	assert.Equal(t, message.FormatText, msg.Format)
	assert.Equal(t, 1, sp.fields)
	assert.Equal(t, "v", sp.lastBody["k"])

	_, err = parser.Parse(ctx, sp, event.New("x", "a", []byte("hello"), nil))
	assert.ErrorIs(t, err, parser.ErrUnsupportedWireFormat)

	_, err = parser.Parse(ctx, sp, jsonPayload("a", `{"k":`))
	assert.ErrorIs(t, err, parser.ErrParseFailure)
}

func TestParse_UntaggedMessageIsRejected(t *testing.T) {
	sp := &stubParser{events: []string{"a"}, untagged: true}
	_, err := parser.Parse(context.Background(), sp, markupPayload("a"))
	assert.ErrorIs(t, err, parser.ErrParseFailure)
}

func TestParseError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&parser.ParseError{Op: "build message", Event: parser.EventAccountStatus, Err: cause})

	assert.ErrorIs(t, err, parser.ErrParseFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "build message")
	assert.Contains(t, err.Error(), parser.EventAccountStatus)

	var pe *parser.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, parser.EventAccountStatus, pe.Event)

	unsupported := parser.Unsupported(parser.EventAccountStatus, "markup", "json")
	assert.ErrorIs(t, unsupported, parser.ErrUnsupportedWireFormat)
	assert.NotErrorIs(t, unsupported, parser.ErrParseFailure)
}
