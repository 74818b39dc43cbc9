package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	RoutesAssigned      Type = "routes_assigned"
	TruckPositionUpdate Type = "truck_position_update"
	RouteCompleted      Type = "route_completed"
	BinReading          Type = "bin_reading"
)

// Event is the envelope pushed to dashboards and across instances.
type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func New(t Type, data map[string]interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}
}

// Publisher delivers events. Delivery is best effort and never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Multi fans an event out to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) {
	for _, p := range m {
		p.Publish(ctx, evt)
	}
}

// Nop drops everything.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
