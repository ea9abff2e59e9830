package publishers

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"

	"github.com/samvad-hq/mealbook/internal/domain"
)

func TestGCPPubSubSenderPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()

	ctx := context.Background()
	cfg := &GCPQueueConfig{
		ProjectID:    "test-project",
		Topic:        "meals",
		EmulatorHost: server.Addr,
	}

	admin, err := pubsub.NewClient(ctx, cfg.ProjectID, pubSubClientOptions(cfg)...)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, cfg.Topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	sender, err := newGCPPubSubSender(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubSender: %v", err)
	}
	defer sender.Close()

	err = sender.Send(ctx, NewEvent(EventMealCreated, domain.Meal{
		BaseEntity: domain.BaseEntity{ID: "m1"},
		Name:       "Green Smoothie",
	}))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["event_type"] != EventMealCreated || msgs[0].Attributes["meal_id"] != "m1" {
		t.Fatalf("attributes = %v", msgs[0].Attributes)
	}
	var evt Event
	if err := json.Unmarshal(msgs[0].Data, &evt); err != nil || evt.Meal.Name != "Green Smoothie" {
		t.Fatalf("payload = %s (%v)", msgs[0].Data, err)
	}
}

func TestGCPPubSubSenderOrderedUsesMealKey(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()

	ctx := context.Background()
	cfg := &GCPQueueConfig{
		ProjectID:    "test-project",
		Topic:        "meals-ordered",
		EmulatorHost: server.Addr,
		Ordered:      true,
	}

	admin, err := pubsub.NewClient(ctx, cfg.ProjectID, pubSubClientOptions(cfg)...)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, cfg.Topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	sender, err := newGCPPubSubSender(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubSender: %v", err)
	}
	defer sender.Close()

	if err := sender.Send(ctx, NewEvent(EventMealUpdated, domain.Meal{BaseEntity: domain.BaseEntity{ID: "m7"}})); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 || msgs[0].OrderingKey != "m7" {
		t.Fatalf("messages = %+v", msgs)
	}
}
