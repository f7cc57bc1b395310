package notification

// Event is offered to observers before delivery. It lives for one send.
//
// Observers may rewrite Text. Cancellation is one-way: once any observer
// cancels, the event stays cancelled.
type Event struct {
	Recipient Player
	Category  Category
	// Text is styled when a segmented representation exists; otherwise the
	// plain string is used and only chat can carry it.
	Text Text

	cancelled bool
}

// Cancel vetoes delivery of the event.
func (e *Event) Cancel() { e.cancelled = true }

func (e *Event) Cancelled() bool { return e.cancelled }

// Observer inspects (and may cancel or rewrite) an event before delivery.
type Observer func(e *Event)
