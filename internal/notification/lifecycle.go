package notification

import (
	"time"

	"mcnotify/internal/eventbus"
)

// Event bus types published by the engine.
const (
	EventDelivered = "notification.delivered"
	EventCancelled = "notification.cancelled"
	EventSkipped   = "notification.skipped"
	EventAdmin     = "notification.admin_broadcast"
)

// LifecycleEvent is the Data payload of engine bus events.
// Keep it small; subscribers may log or serialize it.
type LifecycleEvent struct {
	Recipient string    `json:"recipient,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Channels  []Channel `json:"channels,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Count     int       `json:"count,omitempty"`
	At        time.Time `json:"at"`
}

func publish(bus eventbus.Publisher, typ string, data LifecycleEvent) {
	if bus == nil {
		return
	}
	now := time.Now()
	data.At = now
	bus.Publish(eventbus.Event{Type: typ, Time: now, Data: data})
}
