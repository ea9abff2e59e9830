package publishers

import (
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/mealbook/internal/domain"
)

// Event types emitted when the local copy of a meal changes.
const (
	EventMealCreated = "meal.created"
	EventMealUpdated = "meal.updated"
	EventMealDeleted = "meal.deleted"
)

// Event is the change notification sent downstream. ID is unique per event and
// doubles as the deduplication key for sinks that support one.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	MealID     string      `json:"meal_id"`
	Meal       domain.Meal `json:"meal"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewEvent constructs an Event of the given type for a meal.
func NewEvent(typ string, meal domain.Meal) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		MealID:     meal.ID,
		Meal:       meal,
		OccurredAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_id":   e.ID,
		"event_type": e.Type,
		"meal_id":    e.MealID,
		"category":   string(e.Meal.Category),
	}
}

// groupKey orders events of one meal on FIFO queues and topics.
func (e Event) groupKey() string {
	if e.MealID != "" {
		return e.MealID
	}
	return e.Type
}
