package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubPublisher struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}

type closingPublisher struct {
	stubPublisher
}

func (c *closingPublisher) Close() error {
	c.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
		nil,
	})

	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if fanout.Size() != 2 {
		t.Fatalf("Size = %d", fanout.Size())
	}
}

func TestFanoutCloseReleasesClosers(t *testing.T) {
	closer := &closingPublisher{stubPublisher{id: "ps", typ: TypePubSub}}
	fanout := NewFanout([]Publisher{&stubPublisher{id: "h", typ: TypeHTTP}, closer})

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closer.closed {
		t.Fatalf("closer not closed")
	}
	var nilFanout *Fanout
	if n, err := nilFanout.Publish(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("nil fanout publish = %d, %v", n, err)
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 1 || pubs[0].Type() != TypeHTTP {
		t.Fatalf("unexpected publishers %#v", pubs)
	}
}

func TestBuildAllRejectsUnknownTypeAndClosesBuilt(t *testing.T) {
	built := &closingPublisher{stubPublisher{id: "first", typ: "stub"}}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return built, nil },
	})

	_, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "first", Type: "stub"},
		{ID: "kafka", Type: "kafka"},
	}, nil)
	if err == nil || !strings.Contains(err.Error(), "known: stub") {
		t.Fatalf("expected unknown type error listing known types, got %v", err)
	}
	if !built.closed {
		t.Fatalf("publisher built before the failure was not closed")
	}
}

func TestBuildAllSkipsDisabled(t *testing.T) {
	off := false
	calls := 0
	reg := NewRegistry(map[string]Builder{
		" STUB ": func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
			calls++
			return &stubPublisher{id: cfg.ID, typ: "stub"}, nil
		},
	})

	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "on", Type: "stub"},
		{ID: "off", Type: "stub", Enabled: &off},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if calls != 1 || len(pubs) != 1 || pubs[0].ID() != "on" {
		t.Fatalf("pubs = %#v, calls = %d", pubs, calls)
	}
}

func TestDefaultRegistryTypes(t *testing.T) {
	got := strings.Join(DefaultRegistry().Types(), ",")
	if got != "http,pubsub,sns,sqs" {
		t.Fatalf("Types = %s", got)
	}
}
