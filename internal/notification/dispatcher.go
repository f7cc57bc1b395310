package notification

import (
	"errors"
	"sync"
	"time"

	"mcnotify/internal/eventbus"
	logx "mcnotify/pkg/logx"
)

// Channel names a client output surface.
type Channel string

const (
	ChannelChat      Channel = "chat"
	ChannelActionBar Channel = "action_bar"
)

const defaultHistorySize = 300

type HistoryItem struct {
	At        time.Time
	Recipient Player
	Category  Category
	Channels  []Channel
	Text      string
}

// Dispatcher writes accepted events to the channels enabled for their category.
type Dispatcher struct {
	settings *Registry
	channels Channels
	log      logx.Logger
	bus      eventbus.Publisher

	// In-memory history (for the history command)
	hmu        sync.Mutex
	history    []HistoryItem
	historyMax int
}

func NewDispatcher(settings *Registry, channels Channels, log logx.Logger, bus eventbus.Publisher, historySize int) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if channels == nil {
		channels = nopChannels{}
	}
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Dispatcher{
		settings:   settings,
		channels:   channels,
		log:        log,
		bus:        bus,
		historyMax: historySize,
	}
}

// Deliver writes ev to every channel its category enables and returns the
// channels that accepted the write. Cancelled events are ignored.
//
// Styled text may go to the action bar and to chat; plain text only to chat.
func (d *Dispatcher) Deliver(ev *Event) []Channel {
	if ev == nil || ev.Cancelled() {
		return nil
	}
	s := d.settings.Get(ev.Category)
	p := ev.Recipient

	var wrote []Channel
	if ev.Text.IsStyled() && s.SendToActionBar {
		if d.write(ChannelActionBar, p, func() error { return d.channels.WriteActionBar(p, ev.Text) }) {
			wrote = append(wrote, ChannelActionBar)
		}
	}
	if s.SendToChat {
		if d.write(ChannelChat, p, func() error { return d.channels.WriteChat(p, ev.Text) }) {
			wrote = append(wrote, ChannelChat)
		}
	}

	if len(wrote) == 0 {
		publish(d.bus, EventSkipped, LifecycleEvent{Recipient: p.Name, Category: ev.Category, Reason: "no_channel"})
		return nil
	}
	d.appendHistory(HistoryItem{At: time.Now(), Recipient: p, Category: ev.Category, Channels: wrote, Text: ev.Text.Unformatted()})
	publish(d.bus, EventDelivered, LifecycleEvent{Recipient: p.Name, Category: ev.Category, Channels: wrote})
	return wrote
}

func (d *Dispatcher) write(ch Channel, p Player, fn func() error) bool {
	err := fn()
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrOffline):
		return false
	default:
		d.log.Debug("channel write failed", logx.String("channel", string(ch)), logx.String("player", p.Name), logx.Err(err))
		return false
	}
}

// History returns the most recent deliveries, oldest first.
func (d *Dispatcher) History() []HistoryItem {
	d.hmu.Lock()
	out := append([]HistoryItem(nil), d.history...)
	d.hmu.Unlock()
	return out
}

func (d *Dispatcher) appendHistory(it HistoryItem) {
	d.hmu.Lock()
	d.history = append(d.history, it)
	if len(d.history) > d.historyMax {
		d.history = d.history[len(d.history)-d.historyMax:]
	}
	d.hmu.Unlock()
}
